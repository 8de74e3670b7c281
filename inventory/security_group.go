package inventory

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/rs/zerolog/log"
)

// SecurityGroupRule is one expanded rule: a single AWS permission block
// yields one record per CIDR range, IPv6 range, prefix list, or peer group.
type SecurityGroupRule struct {
	Type        string `json:"type" yaml:"type"`
	Protocol    string `json:"protocol" yaml:"protocol"`
	PortRange   string `json:"port_range" yaml:"port_range"`
	Source      string `json:"source" yaml:"source"`
	Description string `json:"description" yaml:"description"`
}

// SecurityGroup is the normalized record for one security group.
type SecurityGroup struct {
	GroupID            string                  `json:"group_id" yaml:"group_id"`
	GroupName          string                  `json:"group_name" yaml:"group_name"`
	Description        string                  `json:"description" yaml:"description"`
	VPCID              string                  `json:"vpc_id" yaml:"vpc_id"`
	OwnerID            string                  `json:"owner_id" yaml:"owner_id"`
	InboundRulesCount  int                     `json:"inbound_rules_count" yaml:"inbound_rules_count"`
	OutboundRulesCount int                     `json:"outbound_rules_count" yaml:"outbound_rules_count"`
	InboundRules       []SecurityGroupRule     `json:"inbound_rules" yaml:"inbound_rules"`
	OutboundRules      []SecurityGroupRule     `json:"outbound_rules" yaml:"outbound_rules"`
	InboundRulesRaw    []ec2types.IpPermission `json:"inbound_rules_raw" yaml:"inbound_rules_raw"`
	OutboundRulesRaw   []ec2types.IpPermission `json:"outbound_rules_raw" yaml:"outbound_rules_raw"`
	Tags               []Tag                   `json:"tags" yaml:"tags"`
	Name               *string                 `json:"name" yaml:"name"`
}

// SecurityGroupsData is the "security_groups" section payload.
type SecurityGroupsData struct {
	TotalCount     int                      `json:"total_count" yaml:"total_count"`
	SecurityGroups []SecurityGroup          `json:"security_groups" yaml:"security_groups"`
	Raw            []ec2types.SecurityGroup `json:"raw_data" yaml:"raw_data"`
}

func (*SecurityGroupsData) sectionData() {}

// FetchSecurityGroups collects and normalizes all security groups of a VPC.
func FetchSecurityGroups(ctx context.Context, q QueryService, vpcID string) (*SecurityGroupsData, error) {
	out, err := q.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		Filters: vpcFilter(vpcID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe security groups: %w", err)
	}

	groups := make([]SecurityGroup, 0, len(out.SecurityGroups))
	for _, sg := range out.SecurityGroups {
		groups = append(groups, normalizeSecurityGroup(sg))
	}

	log.Debug().Str("vpc_id", vpcID).Int("count", len(groups)).Msg("collected security groups")

	return &SecurityGroupsData{
		TotalCount:     len(groups),
		SecurityGroups: groups,
		Raw:            out.SecurityGroups,
	}, nil
}

func normalizeSecurityGroup(sg ec2types.SecurityGroup) SecurityGroup {
	inbound := expandPermissions(sg.IpPermissions)
	outbound := expandPermissions(sg.IpPermissionsEgress)

	return SecurityGroup{
		GroupID:            aws.ToString(sg.GroupId),
		GroupName:          aws.ToString(sg.GroupName),
		Description:        aws.ToString(sg.Description),
		VPCID:              aws.ToString(sg.VpcId),
		OwnerID:            aws.ToString(sg.OwnerId),
		InboundRulesCount:  len(inbound),
		OutboundRulesCount: len(outbound),
		InboundRules:       inbound,
		OutboundRules:      outbound,
		InboundRulesRaw:    sg.IpPermissions,
		OutboundRulesRaw:   sg.IpPermissionsEgress,
		Tags:               convertTags(sg.Tags),
		Name:               nameFromTags(sg.Tags),
	}
}

// expandPermissions flattens permission blocks into one rule record per
// referenced source. This is a one-to-many expansion: a permission with three
// CIDR ranges yields three rules.
func expandPermissions(permissions []ec2types.IpPermission) []SecurityGroupRule {
	rules := []SecurityGroupRule{}

	for _, perm := range permissions {
		protocol := aws.ToString(perm.IpProtocol)
		if protocol == "" {
			protocol = "-1"
		}

		var portRange, protoName string
		if protocol == "-1" {
			portRange = "All"
			protoName = "All"
		} else {
			portRange = formatPortRange(perm.FromPort, perm.ToPort)
			protoName = protocolName(protocol)
		}

		for _, ipRange := range perm.IpRanges {
			rules = append(rules, SecurityGroupRule{
				Type:        "IPv4",
				Protocol:    protoName,
				PortRange:   portRange,
				Source:      aws.ToString(ipRange.CidrIp),
				Description: aws.ToString(ipRange.Description),
			})
		}

		for _, ipv6Range := range perm.Ipv6Ranges {
			rules = append(rules, SecurityGroupRule{
				Type:        "IPv6",
				Protocol:    protoName,
				PortRange:   portRange,
				Source:      aws.ToString(ipv6Range.CidrIpv6),
				Description: aws.ToString(ipv6Range.Description),
			})
		}

		for _, prefixList := range perm.PrefixListIds {
			rules = append(rules, SecurityGroupRule{
				Type:        "Prefix List",
				Protocol:    protoName,
				PortRange:   portRange,
				Source:      aws.ToString(prefixList.PrefixListId),
				Description: aws.ToString(prefixList.Description),
			})
		}

		for _, pair := range perm.UserIdGroupPairs {
			rules = append(rules, SecurityGroupRule{
				Type:        "Security Group",
				Protocol:    protoName,
				PortRange:   portRange,
				Source:      aws.ToString(pair.GroupId),
				Description: aws.ToString(pair.Description),
			})
		}
	}

	return rules
}

// formatPortRange renders a from/to port pair: absent ports mean "All",
// a single port renders as itself, a range as "from-to".
func formatPortRange(from, to *int32) string {
	if from == nil && to == nil {
		return "All"
	}
	f := aws.ToInt32(from)
	t := aws.ToInt32(to)
	if f == t {
		return strconv.Itoa(int(f))
	}
	return fmt.Sprintf("%d-%d", f, t)
}
