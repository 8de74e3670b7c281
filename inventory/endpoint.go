package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/rs/zerolog/log"
)

// SecurityGroupRef identifies a security group attached to an interface
// endpoint or ENI.
type SecurityGroupRef struct {
	GroupID   string `json:"group_id" yaml:"group_id"`
	GroupName string `json:"group_name" yaml:"group_name"`
}

// DNSEntry is one private DNS entry on an interface endpoint.
type DNSEntry struct {
	DNSName      string `json:"dns_name" yaml:"dns_name"`
	HostedZoneID string `json:"hosted_zone_id" yaml:"hosted_zone_id"`
}

// VPCEndpoint is the normalized record for one VPC endpoint.
type VPCEndpoint struct {
	VPCEndpointID       string             `json:"vpc_endpoint_id" yaml:"vpc_endpoint_id"`
	VPCEndpointType     string             `json:"vpc_endpoint_type" yaml:"vpc_endpoint_type"`
	VPCID               string             `json:"vpc_id" yaml:"vpc_id"`
	ServiceName         string             `json:"service_name" yaml:"service_name"`
	ServiceShortName    string             `json:"service_short_name" yaml:"service_short_name"`
	State               string             `json:"state" yaml:"state"`
	PolicyDocument      *string            `json:"policy_document" yaml:"policy_document"`
	RouteTableIDs       []string           `json:"route_table_ids" yaml:"route_table_ids"`
	SubnetIDs           []string           `json:"subnet_ids" yaml:"subnet_ids"`
	SecurityGroups      []SecurityGroupRef `json:"security_groups" yaml:"security_groups"`
	NetworkInterfaceIDs []string           `json:"network_interface_ids" yaml:"network_interface_ids"`
	DNSEntries          []DNSEntry         `json:"dns_entries" yaml:"dns_entries"`
	PrivateDNSEnabled   bool               `json:"private_dns_enabled" yaml:"private_dns_enabled"`
	RequesterManaged    bool               `json:"requester_managed" yaml:"requester_managed"`
	OwnerID             string             `json:"owner_id" yaml:"owner_id"`
	CreationTimestamp   *time.Time         `json:"creation_timestamp" yaml:"creation_timestamp"`
	LastError           *string            `json:"last_error" yaml:"last_error"`
	Tags                []Tag              `json:"tags" yaml:"tags"`
	Name                *string            `json:"name" yaml:"name"`
}

// VPCEndpointsData is the "vpc_endpoints" section payload.
type VPCEndpointsData struct {
	TotalCount               int                    `json:"total_count" yaml:"total_count"`
	InterfaceCount           int                    `json:"interface_count" yaml:"interface_count"`
	GatewayCount             int                    `json:"gateway_count" yaml:"gateway_count"`
	GatewayLoadBalancerCount int                    `json:"gateway_load_balancer_count" yaml:"gateway_load_balancer_count"`
	VPCEndpoints             []VPCEndpoint          `json:"vpc_endpoints" yaml:"vpc_endpoints"`
	Raw                      []ec2types.VpcEndpoint `json:"raw_data" yaml:"raw_data"`
}

func (*VPCEndpointsData) sectionData() {}

// FetchVPCEndpoints collects and normalizes all VPC endpoints of a VPC.
func FetchVPCEndpoints(ctx context.Context, q QueryService, vpcID string) (*VPCEndpointsData, error) {
	out, err := q.DescribeVpcEndpoints(ctx, &ec2.DescribeVpcEndpointsInput{
		Filters: vpcFilter(vpcID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe VPC endpoints: %w", err)
	}

	endpoints := make([]VPCEndpoint, 0, len(out.VpcEndpoints))
	var interfaceCount, gatewayCount, gwlbCount int
	for _, ep := range out.VpcEndpoints {
		rec := normalizeVPCEndpoint(ep)
		switch rec.VPCEndpointType {
		case string(ec2types.VpcEndpointTypeInterface):
			interfaceCount++
		case string(ec2types.VpcEndpointTypeGateway):
			gatewayCount++
		case string(ec2types.VpcEndpointTypeGatewayLoadBalancer):
			gwlbCount++
		}
		endpoints = append(endpoints, rec)
	}

	log.Debug().Str("vpc_id", vpcID).Int("count", len(endpoints)).Msg("collected VPC endpoints")

	return &VPCEndpointsData{
		TotalCount:               len(endpoints),
		InterfaceCount:           interfaceCount,
		GatewayCount:             gatewayCount,
		GatewayLoadBalancerCount: gwlbCount,
		VPCEndpoints:             endpoints,
		Raw:                      out.VpcEndpoints,
	}, nil
}

func normalizeVPCEndpoint(ep ec2types.VpcEndpoint) VPCEndpoint {
	endpointType := string(ep.VpcEndpointType)
	if endpointType == "" {
		endpointType = string(ec2types.VpcEndpointTypeGateway)
	}

	securityGroups := make([]SecurityGroupRef, 0, len(ep.Groups))
	for _, sg := range ep.Groups {
		securityGroups = append(securityGroups, SecurityGroupRef{
			GroupID:   aws.ToString(sg.GroupId),
			GroupName: aws.ToString(sg.GroupName),
		})
	}

	dnsEntries := make([]DNSEntry, 0, len(ep.DnsEntries))
	for _, dns := range ep.DnsEntries {
		dnsEntries = append(dnsEntries, DNSEntry{
			DNSName:      aws.ToString(dns.DnsName),
			HostedZoneID: aws.ToString(dns.HostedZoneId),
		})
	}

	// "com.amazonaws.us-east-1.s3" -> "s3"
	serviceName := aws.ToString(ep.ServiceName)
	shortName := "unknown"
	if serviceName != "" {
		parts := strings.Split(serviceName, ".")
		shortName = parts[len(parts)-1]
	}

	var lastError *string
	if ep.LastError != nil && ep.LastError.Message != nil {
		lastError = ep.LastError.Message
	}

	return VPCEndpoint{
		VPCEndpointID:       aws.ToString(ep.VpcEndpointId),
		VPCEndpointType:     endpointType,
		VPCID:               aws.ToString(ep.VpcId),
		ServiceName:         serviceName,
		ServiceShortName:    shortName,
		State:               string(ep.State),
		PolicyDocument:      ep.PolicyDocument,
		RouteTableIDs:       ep.RouteTableIds,
		SubnetIDs:           ep.SubnetIds,
		SecurityGroups:      securityGroups,
		NetworkInterfaceIDs: ep.NetworkInterfaceIds,
		DNSEntries:          dnsEntries,
		PrivateDNSEnabled:   aws.ToBool(ep.PrivateDnsEnabled),
		RequesterManaged:    aws.ToBool(ep.RequesterManaged),
		OwnerID:             aws.ToString(ep.OwnerId),
		CreationTimestamp:   ep.CreationTimestamp,
		LastError:           lastError,
		Tags:                convertTags(ep.Tags),
		Name:                nameFromTags(ep.Tags),
	}
}
