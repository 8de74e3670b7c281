package inventory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/rs/zerolog/log"
)

// VPCNotFoundError is returned when the target VPC does not exist in the
// region. It aborts the whole collection.
type VPCNotFoundError struct {
	VPCID string
}

func (e *VPCNotFoundError) Error() string {
	return fmt.Sprintf("VPC %s not found", e.VPCID)
}

// VPCSummary is one row of ListVPCs output.
type VPCSummary struct {
	VPCID     string  `json:"vpc_id" yaml:"vpc_id"`
	CIDRBlock string  `json:"cidr_block" yaml:"cidr_block"`
	State     string  `json:"state" yaml:"state"`
	IsDefault bool    `json:"is_default" yaml:"is_default"`
	Name      *string `json:"name" yaml:"name"`
}

// IPv6CIDRAssociation describes one IPv6 CIDR block association on a VPC.
type IPv6CIDRAssociation struct {
	AssociationID        string `json:"association_id" yaml:"association_id"`
	IPv6CIDRBlock        string `json:"ipv6_cidr_block" yaml:"ipv6_cidr_block"`
	IPv6Pool             string `json:"ipv6_pool" yaml:"ipv6_pool"`
	NetworkBorderGroup   string `json:"network_border_group" yaml:"network_border_group"`
	IPv6AddressAttribute string `json:"ipv6_address_attribute" yaml:"ipv6_address_attribute"`
	IPSource             string `json:"ip_source" yaml:"ip_source"`
	State                string `json:"state" yaml:"state"`
	StatusMessage        string `json:"status_message" yaml:"status_message"`
}

// CIDRAssociation describes one IPv4 CIDR block association on a VPC.
type CIDRAssociation struct {
	AssociationID string `json:"association_id" yaml:"association_id"`
	CIDRBlock     string `json:"cidr_block" yaml:"cidr_block"`
	State         string `json:"state" yaml:"state"`
	StatusMessage string `json:"status_message" yaml:"status_message"`
}

// VPCDetails is the "vpc" section payload.
type VPCDetails struct {
	VPCID                string                `json:"vpc_id" yaml:"vpc_id"`
	CIDRBlock            string                `json:"cidr_block" yaml:"cidr_block"`
	State                string                `json:"state" yaml:"state"`
	IsDefault            bool                  `json:"is_default" yaml:"is_default"`
	InstanceTenancy      string                `json:"instance_tenancy" yaml:"instance_tenancy"`
	DHCPOptionsID        *string               `json:"dhcp_options_id" yaml:"dhcp_options_id"`
	OwnerID              string                `json:"owner_id" yaml:"owner_id"`
	IPv6CIDRAssociations []IPv6CIDRAssociation `json:"ipv6_cidr_block_associations" yaml:"ipv6_cidr_block_associations"`
	IPv6CIDRBlocks       []string              `json:"ipv6_cidr_blocks" yaml:"ipv6_cidr_blocks"`
	CIDRAssociations     []CIDRAssociation     `json:"cidr_block_associations" yaml:"cidr_block_associations"`
	AdditionalCIDRBlocks []string              `json:"additional_cidr_blocks" yaml:"additional_cidr_blocks"`
	Tags                 []Tag                 `json:"tags" yaml:"tags"`
	Name                 *string               `json:"name" yaml:"name"`
	Raw                  *ec2types.Vpc         `json:"raw_data" yaml:"raw_data"`
}

func (*VPCDetails) sectionData() {}

// FetchVPCDetails resolves the target VPC. Every collection starts here: the
// DHCP options ID it yields is a cross-section dependency, and a missing VPC
// invalidates everything else.
func FetchVPCDetails(ctx context.Context, q QueryService, vpcID string) (*VPCDetails, error) {
	log.Debug().Str("vpc_id", vpcID).Msg("describing VPC")

	out, err := q.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{VpcIds: []string{vpcID}})
	if err != nil {
		return nil, fmt.Errorf("failed to describe VPC %s: %w", vpcID, err)
	}
	if len(out.Vpcs) == 0 {
		return nil, &VPCNotFoundError{VPCID: vpcID}
	}

	vpc := out.Vpcs[0]
	return normalizeVPC(vpc), nil
}

func normalizeVPC(vpc ec2types.Vpc) *VPCDetails {
	ipv6Assocs := make([]IPv6CIDRAssociation, 0, len(vpc.Ipv6CidrBlockAssociationSet))
	ipv6Blocks := []string{}
	for _, assoc := range vpc.Ipv6CidrBlockAssociationSet {
		a := IPv6CIDRAssociation{
			AssociationID:        aws.ToString(assoc.AssociationId),
			IPv6CIDRBlock:        aws.ToString(assoc.Ipv6CidrBlock),
			IPv6Pool:             aws.ToString(assoc.Ipv6Pool),
			NetworkBorderGroup:   aws.ToString(assoc.NetworkBorderGroup),
			IPv6AddressAttribute: string(assoc.Ipv6AddressAttribute),
			IPSource:             string(assoc.IpSource),
		}
		if assoc.Ipv6CidrBlockState != nil {
			a.State = string(assoc.Ipv6CidrBlockState.State)
			a.StatusMessage = aws.ToString(assoc.Ipv6CidrBlockState.StatusMessage)
		}
		ipv6Assocs = append(ipv6Assocs, a)
		if a.IPv6CIDRBlock != "" {
			ipv6Blocks = append(ipv6Blocks, a.IPv6CIDRBlock)
		}
	}

	cidrAssocs := make([]CIDRAssociation, 0, len(vpc.CidrBlockAssociationSet))
	additional := []string{}
	primaryCIDR := aws.ToString(vpc.CidrBlock)
	for _, assoc := range vpc.CidrBlockAssociationSet {
		a := CIDRAssociation{
			AssociationID: aws.ToString(assoc.AssociationId),
			CIDRBlock:     aws.ToString(assoc.CidrBlock),
		}
		if assoc.CidrBlockState != nil {
			a.State = string(assoc.CidrBlockState.State)
			a.StatusMessage = aws.ToString(assoc.CidrBlockState.StatusMessage)
		}
		cidrAssocs = append(cidrAssocs, a)
		if a.CIDRBlock != primaryCIDR {
			additional = append(additional, a.CIDRBlock)
		}
	}

	tenancy := string(vpc.InstanceTenancy)
	if tenancy == "" {
		tenancy = "default"
	}

	return &VPCDetails{
		VPCID:                aws.ToString(vpc.VpcId),
		CIDRBlock:            primaryCIDR,
		State:                string(vpc.State),
		IsDefault:            aws.ToBool(vpc.IsDefault),
		InstanceTenancy:      tenancy,
		DHCPOptionsID:        vpc.DhcpOptionsId,
		OwnerID:              aws.ToString(vpc.OwnerId),
		IPv6CIDRAssociations: ipv6Assocs,
		IPv6CIDRBlocks:       ipv6Blocks,
		CIDRAssociations:     cidrAssocs,
		AdditionalCIDRBlocks: additional,
		Tags:                 convertTags(vpc.Tags),
		Name:                 nameFromTags(vpc.Tags),
		Raw:                  &vpc,
	}
}

// ListVPCs enumerates all VPCs in the region, for interactive selection and
// the list subcommand.
func ListVPCs(ctx context.Context, q QueryService) ([]VPCSummary, error) {
	out, err := q.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list VPCs: %w", err)
	}

	summaries := make([]VPCSummary, 0, len(out.Vpcs))
	for _, vpc := range out.Vpcs {
		summaries = append(summaries, VPCSummary{
			VPCID:     aws.ToString(vpc.VpcId),
			CIDRBlock: aws.ToString(vpc.CidrBlock),
			State:     string(vpc.State),
			IsDefault: aws.ToBool(vpc.IsDefault),
			Name:      nameFromTags(vpc.Tags),
		})
	}
	return summaries, nil
}

// VPCAttributesData is the "vpc_attributes" section payload. Each attribute
// is fetched with its own DescribeVpcAttribute call; a failed call degrades
// that one attribute to nil instead of failing the section.
type VPCAttributesData struct {
	VPCID      string        `json:"vpc_id" yaml:"vpc_id"`
	Attributes VPCAttributes `json:"attributes" yaml:"attributes"`
}

func (*VPCAttributesData) sectionData() {}

type VPCAttributes struct {
	EnableDNSSupport                 *bool `json:"enable_dns_support" yaml:"enable_dns_support"`
	EnableDNSHostnames               *bool `json:"enable_dns_hostnames" yaml:"enable_dns_hostnames"`
	EnableNetworkAddressUsageMetrics *bool `json:"enable_network_address_usage_metrics" yaml:"enable_network_address_usage_metrics"`
}

func FetchVPCAttributes(ctx context.Context, q QueryService, vpcID string) (*VPCAttributesData, error) {
	attrs := VPCAttributes{}

	out, err := q.DescribeVpcAttribute(ctx, &ec2.DescribeVpcAttributeInput{
		VpcId:     aws.String(vpcID),
		Attribute: ec2types.VpcAttributeNameEnableDnsSupport,
	})
	if err != nil {
		log.Warn().Err(err).Str("vpc_id", vpcID).Msg("failed to get enableDnsSupport")
	} else {
		attrs.EnableDNSSupport = attributeValue(out.EnableDnsSupport)
	}

	out, err = q.DescribeVpcAttribute(ctx, &ec2.DescribeVpcAttributeInput{
		VpcId:     aws.String(vpcID),
		Attribute: ec2types.VpcAttributeNameEnableDnsHostnames,
	})
	if err != nil {
		log.Warn().Err(err).Str("vpc_id", vpcID).Msg("failed to get enableDnsHostnames")
	} else {
		attrs.EnableDNSHostnames = attributeValue(out.EnableDnsHostnames)
	}

	out, err = q.DescribeVpcAttribute(ctx, &ec2.DescribeVpcAttributeInput{
		VpcId:     aws.String(vpcID),
		Attribute: ec2types.VpcAttributeNameEnableNetworkAddressUsageMetrics,
	})
	if err != nil {
		log.Warn().Err(err).Str("vpc_id", vpcID).Msg("failed to get enableNetworkAddressUsageMetrics")
	} else {
		attrs.EnableNetworkAddressUsageMetrics = attributeValue(out.EnableNetworkAddressUsageMetrics)
	}

	return &VPCAttributesData{VPCID: vpcID, Attributes: attrs}, nil
}

func attributeValue(attr *ec2types.AttributeBooleanValue) *bool {
	if attr == nil {
		return aws.Bool(false)
	}
	if attr.Value == nil {
		return aws.Bool(false)
	}
	return attr.Value
}
