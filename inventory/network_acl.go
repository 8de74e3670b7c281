package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/rs/zerolog/log"
)

// NetworkACLRule is one normalized NACL entry.
type NetworkACLRule struct {
	RuleNumber     int32  `json:"rule_number" yaml:"rule_number"`
	Protocol       string `json:"protocol" yaml:"protocol"`
	ProtocolNumber string `json:"protocol_number" yaml:"protocol_number"`
	RuleAction     string `json:"rule_action" yaml:"rule_action"`
	CIDRBlock      string `json:"cidr_block" yaml:"cidr_block"`
	PortRange      string `json:"port_range" yaml:"port_range"`
	ICMPInfo       string `json:"icmp_info" yaml:"icmp_info"`
}

// NetworkACLAssociation links a NACL to a subnet.
type NetworkACLAssociation struct {
	NetworkACLAssociationID string `json:"network_acl_association_id" yaml:"network_acl_association_id"`
	SubnetID                string `json:"subnet_id" yaml:"subnet_id"`
}

// NetworkACL is the normalized record for one network ACL.
type NetworkACL struct {
	NetworkACLID          string                     `json:"network_acl_id" yaml:"network_acl_id"`
	VPCID                 string                     `json:"vpc_id" yaml:"vpc_id"`
	OwnerID               string                     `json:"owner_id" yaml:"owner_id"`
	IsDefault             bool                       `json:"is_default" yaml:"is_default"`
	Associations          []NetworkACLAssociation    `json:"associations" yaml:"associations"`
	AssociatedSubnetCount int                        `json:"associated_subnet_count" yaml:"associated_subnet_count"`
	InboundRulesCount     int                        `json:"inbound_rules_count" yaml:"inbound_rules_count"`
	OutboundRulesCount    int                        `json:"outbound_rules_count" yaml:"outbound_rules_count"`
	InboundRules          []NetworkACLRule           `json:"inbound_rules" yaml:"inbound_rules"`
	OutboundRules         []NetworkACLRule           `json:"outbound_rules" yaml:"outbound_rules"`
	EntriesRaw            []ec2types.NetworkAclEntry `json:"entries_raw" yaml:"entries_raw"`
	Tags                  []Tag                      `json:"tags" yaml:"tags"`
	Name                  *string                    `json:"name" yaml:"name"`
}

// NetworkACLsData is the "network_acls" section payload.
type NetworkACLsData struct {
	TotalCount  int                   `json:"total_count" yaml:"total_count"`
	NetworkACLs []NetworkACL          `json:"network_acls" yaml:"network_acls"`
	Raw         []ec2types.NetworkAcl `json:"raw_data" yaml:"raw_data"`
}

func (*NetworkACLsData) sectionData() {}

// FetchNetworkACLs collects and normalizes all network ACLs of a VPC.
func FetchNetworkACLs(ctx context.Context, q QueryService, vpcID string) (*NetworkACLsData, error) {
	out, err := q.DescribeNetworkAcls(ctx, &ec2.DescribeNetworkAclsInput{
		Filters: vpcFilter(vpcID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe network ACLs: %w", err)
	}

	acls := make([]NetworkACL, 0, len(out.NetworkAcls))
	for _, nacl := range out.NetworkAcls {
		acls = append(acls, normalizeNetworkACL(nacl))
	}

	log.Debug().Str("vpc_id", vpcID).Int("count", len(acls)).Msg("collected network ACLs")

	return &NetworkACLsData{
		TotalCount:  len(acls),
		NetworkACLs: acls,
		Raw:         out.NetworkAcls,
	}, nil
}

func normalizeNetworkACL(nacl ec2types.NetworkAcl) NetworkACL {
	associations := make([]NetworkACLAssociation, 0, len(nacl.Associations))
	for _, assoc := range nacl.Associations {
		associations = append(associations, NetworkACLAssociation{
			NetworkACLAssociationID: aws.ToString(assoc.NetworkAclAssociationId),
			SubnetID:                aws.ToString(assoc.SubnetId),
		})
	}

	var inboundEntries, outboundEntries []ec2types.NetworkAclEntry
	for _, entry := range nacl.Entries {
		if aws.ToBool(entry.Egress) {
			outboundEntries = append(outboundEntries, entry)
		} else {
			inboundEntries = append(inboundEntries, entry)
		}
	}

	inbound := parseACLEntries(inboundEntries)
	outbound := parseACLEntries(outboundEntries)

	return NetworkACL{
		NetworkACLID:          aws.ToString(nacl.NetworkAclId),
		VPCID:                 aws.ToString(nacl.VpcId),
		OwnerID:               aws.ToString(nacl.OwnerId),
		IsDefault:             aws.ToBool(nacl.IsDefault),
		Associations:          associations,
		AssociatedSubnetCount: len(associations),
		InboundRulesCount:     len(inbound),
		OutboundRulesCount:    len(outbound),
		InboundRules:          inbound,
		OutboundRules:         outbound,
		EntriesRaw:            nacl.Entries,
		Tags:                  convertTags(nacl.Tags),
		Name:                  nameFromTags(nacl.Tags),
	}
}

// parseACLEntries normalizes one direction's entries and sorts them ascending
// by rule number. The sort is semantic, not cosmetic: NACL evaluation order
// is rule-number order. The sort is stable so ties keep API order.
func parseACLEntries(entries []ec2types.NetworkAclEntry) []NetworkACLRule {
	rules := make([]NetworkACLRule, 0, len(entries))

	for _, entry := range entries {
		protocol := aws.ToString(entry.Protocol)
		if protocol == "" {
			protocol = "-1"
		}

		cidrBlock := aws.ToString(entry.CidrBlock)
		if cidrBlock == "" {
			cidrBlock = aws.ToString(entry.Ipv6CidrBlock)
		}

		portRange := "All"
		if pr := entry.PortRange; pr != nil {
			portRange = formatPortRange(pr.From, pr.To)
		}

		icmpInfo := ""
		if icmp := entry.IcmpTypeCode; icmp != nil {
			if icmp.Type != nil || icmp.Code != nil {
				icmpInfo = fmt.Sprintf("Type: %d, Code: %d", aws.ToInt32(icmp.Type), aws.ToInt32(icmp.Code))
			}
		}

		rules = append(rules, NetworkACLRule{
			RuleNumber:     aws.ToInt32(entry.RuleNumber),
			Protocol:       naclProtocolName(protocol),
			ProtocolNumber: protocol,
			RuleAction:     strings.ToUpper(string(entry.RuleAction)),
			CIDRBlock:      cidrBlock,
			PortRange:      portRange,
			ICMPInfo:       icmpInfo,
		})
	}

	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].RuleNumber < rules[j].RuleNumber
	})

	return rules
}
