package inventory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/rs/zerolog/log"
)

// SubnetIPv6CIDR describes one IPv6 CIDR block association on a subnet.
type SubnetIPv6CIDR struct {
	IPv6CIDRBlock string `json:"ipv6_cidr_block" yaml:"ipv6_cidr_block"`
	AssociationID string `json:"association_id" yaml:"association_id"`
	State         string `json:"state" yaml:"state"`
}

// Subnet is the normalized record for one VPC subnet.
type Subnet struct {
	SubnetID                         string           `json:"subnet_id" yaml:"subnet_id"`
	SubnetARN                        string           `json:"subnet_arn" yaml:"subnet_arn"`
	CIDRBlock                        string           `json:"cidr_block" yaml:"cidr_block"`
	AvailabilityZone                 string           `json:"availability_zone" yaml:"availability_zone"`
	AvailabilityZoneID               string           `json:"availability_zone_id" yaml:"availability_zone_id"`
	AvailableIPCount                 int32            `json:"available_ip_count" yaml:"available_ip_count"`
	MapPublicIP                      bool             `json:"map_public_ip" yaml:"map_public_ip"`
	State                            string           `json:"state" yaml:"state"`
	DefaultForAZ                     bool             `json:"default_for_az" yaml:"default_for_az"`
	VPCID                            string           `json:"vpc_id" yaml:"vpc_id"`
	OwnerID                          string           `json:"owner_id" yaml:"owner_id"`
	AssignIPv6OnCreation             bool             `json:"assign_ipv6_on_creation" yaml:"assign_ipv6_on_creation"`
	IPv6Native                       bool             `json:"ipv6_native" yaml:"ipv6_native"`
	IPv6CIDRBlocks                   []SubnetIPv6CIDR `json:"ipv6_cidr_blocks" yaml:"ipv6_cidr_blocks"`
	EnableDNS64                      bool             `json:"enable_dns64" yaml:"enable_dns64"`
	PrivateDNSHostnameType           string           `json:"private_dns_hostname_type" yaml:"private_dns_hostname_type"`
	EnableResourceNameDNSARecord     bool             `json:"enable_resource_name_dns_a_record" yaml:"enable_resource_name_dns_a_record"`
	EnableResourceNameDNSQuadARecord bool             `json:"enable_resource_name_dns_aaaa_record" yaml:"enable_resource_name_dns_aaaa_record"`
	MapCustomerOwnedIP               bool             `json:"map_customer_owned_ip" yaml:"map_customer_owned_ip"`
	CustomerOwnedIPv4Pool            *string          `json:"customer_owned_ipv4_pool" yaml:"customer_owned_ipv4_pool"`
	OutpostARN                       *string          `json:"outpost_arn" yaml:"outpost_arn"`
	EnableLniAtDeviceIndex           *int32           `json:"enable_lni_at_device_index" yaml:"enable_lni_at_device_index"`
	Name                             *string          `json:"name" yaml:"name"`
	Tags                             []Tag            `json:"tags" yaml:"tags"`
}

// SubnetsData is the "subnets" section payload.
type SubnetsData struct {
	TotalCount int               `json:"total_count" yaml:"total_count"`
	Subnets    []Subnet          `json:"subnets" yaml:"subnets"`
	Raw        []ec2types.Subnet `json:"raw_data" yaml:"raw_data"`
}

func (*SubnetsData) sectionData() {}

// FetchSubnets collects and normalizes all subnets of a VPC.
func FetchSubnets(ctx context.Context, q QueryService, vpcID string) (*SubnetsData, error) {
	out, err := q.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{
		Filters: vpcFilter(vpcID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe subnets: %w", err)
	}

	subnets := make([]Subnet, 0, len(out.Subnets))
	for _, subnet := range out.Subnets {
		subnets = append(subnets, normalizeSubnet(subnet))
	}

	log.Debug().Str("vpc_id", vpcID).Int("count", len(subnets)).Msg("collected subnets")

	return &SubnetsData{
		TotalCount: len(subnets),
		Subnets:    subnets,
		Raw:        out.Subnets,
	}, nil
}

func normalizeSubnet(subnet ec2types.Subnet) Subnet {
	ipv6CIDRs := make([]SubnetIPv6CIDR, 0, len(subnet.Ipv6CidrBlockAssociationSet))
	for _, assoc := range subnet.Ipv6CidrBlockAssociationSet {
		c := SubnetIPv6CIDR{
			IPv6CIDRBlock: aws.ToString(assoc.Ipv6CidrBlock),
			AssociationID: aws.ToString(assoc.AssociationId),
		}
		if assoc.Ipv6CidrBlockState != nil {
			c.State = string(assoc.Ipv6CidrBlockState.State)
		}
		ipv6CIDRs = append(ipv6CIDRs, c)
	}

	s := Subnet{
		SubnetID:               aws.ToString(subnet.SubnetId),
		SubnetARN:              aws.ToString(subnet.SubnetArn),
		CIDRBlock:              aws.ToString(subnet.CidrBlock),
		AvailabilityZone:       aws.ToString(subnet.AvailabilityZone),
		AvailabilityZoneID:     aws.ToString(subnet.AvailabilityZoneId),
		AvailableIPCount:       aws.ToInt32(subnet.AvailableIpAddressCount),
		MapPublicIP:            aws.ToBool(subnet.MapPublicIpOnLaunch),
		State:                  string(subnet.State),
		DefaultForAZ:           aws.ToBool(subnet.DefaultForAz),
		VPCID:                  aws.ToString(subnet.VpcId),
		OwnerID:                aws.ToString(subnet.OwnerId),
		AssignIPv6OnCreation:   aws.ToBool(subnet.AssignIpv6AddressOnCreation),
		IPv6Native:             aws.ToBool(subnet.Ipv6Native),
		IPv6CIDRBlocks:         ipv6CIDRs,
		EnableDNS64:            aws.ToBool(subnet.EnableDns64),
		PrivateDNSHostnameType: "ip-name",
		MapCustomerOwnedIP:     aws.ToBool(subnet.MapCustomerOwnedIpOnLaunch),
		CustomerOwnedIPv4Pool:  subnet.CustomerOwnedIpv4Pool,
		OutpostARN:             subnet.OutpostArn,
		EnableLniAtDeviceIndex: subnet.EnableLniAtDeviceIndex,
		Name:                   nameFromTags(subnet.Tags),
		Tags:                   convertTags(subnet.Tags),
	}

	if opts := subnet.PrivateDnsNameOptionsOnLaunch; opts != nil {
		if opts.HostnameType != "" {
			s.PrivateDNSHostnameType = string(opts.HostnameType)
		}
		s.EnableResourceNameDNSARecord = aws.ToBool(opts.EnableResourceNameDnsARecord)
		s.EnableResourceNameDNSQuadARecord = aws.ToBool(opts.EnableResourceNameDnsAAAARecord)
	}

	return s
}

// vpcFilter builds the standard vpc-id describe filter.
func vpcFilter(vpcID string) []ec2types.Filter {
	return []ec2types.Filter{{
		Name:   aws.String("vpc-id"),
		Values: []string{vpcID},
	}}
}
