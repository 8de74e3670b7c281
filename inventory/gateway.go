package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/rs/zerolog/log"
)

// GatewayAttachment links a gateway to a VPC.
type GatewayAttachment struct {
	VPCID string `json:"vpc_id" yaml:"vpc_id"`
	State string `json:"state" yaml:"state"`
}

// InternetGateway is the normalized record for one internet gateway.
type InternetGateway struct {
	InternetGatewayID string              `json:"internet_gateway_id" yaml:"internet_gateway_id"`
	OwnerID           string              `json:"owner_id" yaml:"owner_id"`
	Attachments       []GatewayAttachment `json:"attachments" yaml:"attachments"`
	AttachedVPCID     *string             `json:"attached_vpc_id" yaml:"attached_vpc_id"`
	AttachmentState   *string             `json:"attachment_state" yaml:"attachment_state"`
	Tags              []Tag               `json:"tags" yaml:"tags"`
	Name              *string             `json:"name" yaml:"name"`
}

// InternetGatewaysData is the "internet_gateways" section payload.
type InternetGatewaysData struct {
	TotalCount       int                        `json:"total_count" yaml:"total_count"`
	InternetGateways []InternetGateway          `json:"internet_gateways" yaml:"internet_gateways"`
	Raw              []ec2types.InternetGateway `json:"raw_data" yaml:"raw_data"`
}

func (*InternetGatewaysData) sectionData() {}

// FetchInternetGateways collects internet gateways attached to a VPC.
func FetchInternetGateways(ctx context.Context, q QueryService, vpcID string) (*InternetGatewaysData, error) {
	out, err := q.DescribeInternetGateways(ctx, &ec2.DescribeInternetGatewaysInput{
		Filters: []ec2types.Filter{{
			Name:   aws.String("attachment.vpc-id"),
			Values: []string{vpcID},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe internet gateways: %w", err)
	}

	igws := make([]InternetGateway, 0, len(out.InternetGateways))
	for _, igw := range out.InternetGateways {
		attachments := make([]GatewayAttachment, 0, len(igw.Attachments))
		for _, attachment := range igw.Attachments {
			attachments = append(attachments, GatewayAttachment{
				VPCID: aws.ToString(attachment.VpcId),
				State: string(attachment.State),
			})
		}

		rec := InternetGateway{
			InternetGatewayID: aws.ToString(igw.InternetGatewayId),
			OwnerID:           aws.ToString(igw.OwnerId),
			Attachments:       attachments,
			Tags:              convertTags(igw.Tags),
			Name:              nameFromTags(igw.Tags),
		}
		if len(attachments) > 0 {
			rec.AttachedVPCID = aws.String(attachments[0].VPCID)
			rec.AttachmentState = aws.String(attachments[0].State)
		}
		igws = append(igws, rec)
	}

	log.Debug().Str("vpc_id", vpcID).Int("count", len(igws)).Msg("collected internet gateways")

	return &InternetGatewaysData{
		TotalCount:       len(igws),
		InternetGateways: igws,
		Raw:              out.InternetGateways,
	}, nil
}

// NATGatewayAddress is one address record on a NAT gateway.
type NATGatewayAddress struct {
	AllocationID       string  `json:"allocation_id" yaml:"allocation_id"`
	NetworkInterfaceID string  `json:"network_interface_id" yaml:"network_interface_id"`
	PrivateIP          string  `json:"private_ip" yaml:"private_ip"`
	PublicIP           string  `json:"public_ip" yaml:"public_ip"`
	AssociationID      string  `json:"association_id" yaml:"association_id"`
	IsPrimary          bool    `json:"is_primary" yaml:"is_primary"`
	FailureMessage     *string `json:"failure_message" yaml:"failure_message"`
	Status             string  `json:"status" yaml:"status"`
}

// NATGateway is the normalized record for one NAT gateway.
type NATGateway struct {
	NATGatewayID        string              `json:"nat_gateway_id" yaml:"nat_gateway_id"`
	SubnetID            string              `json:"subnet_id" yaml:"subnet_id"`
	VPCID               string              `json:"vpc_id" yaml:"vpc_id"`
	State               string              `json:"state" yaml:"state"`
	CreateTime          *time.Time          `json:"create_time" yaml:"create_time"`
	DeleteTime          *time.Time          `json:"delete_time" yaml:"delete_time"`
	FailureCode         *string             `json:"failure_code" yaml:"failure_code"`
	FailureMessage      *string             `json:"failure_message" yaml:"failure_message"`
	ConnectivityType    string              `json:"connectivity_type" yaml:"connectivity_type"`
	NATGatewayAddresses []NATGatewayAddress `json:"nat_gateway_addresses" yaml:"nat_gateway_addresses"`
	PrimaryPublicIP     *string             `json:"primary_public_ip" yaml:"primary_public_ip"`
	AddressCount        int                 `json:"address_count" yaml:"address_count"`
	Tags                []Tag               `json:"tags" yaml:"tags"`
	Name                *string             `json:"name" yaml:"name"`
}

// NATGatewaysData is the "nat_gateways" section payload.
type NATGatewaysData struct {
	TotalCount  int                   `json:"total_count" yaml:"total_count"`
	NATGateways []NATGateway          `json:"nat_gateways" yaml:"nat_gateways"`
	Raw         []ec2types.NatGateway `json:"raw_data" yaml:"raw_data"`
}

func (*NATGatewaysData) sectionData() {}

// FetchNATGateways collects and normalizes all NAT gateways of a VPC.
func FetchNATGateways(ctx context.Context, q QueryService, vpcID string) (*NATGatewaysData, error) {
	out, err := q.DescribeNatGateways(ctx, &ec2.DescribeNatGatewaysInput{
		Filter: vpcFilter(vpcID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe NAT gateways: %w", err)
	}

	nats := make([]NATGateway, 0, len(out.NatGateways))
	for _, nat := range out.NatGateways {
		nats = append(nats, normalizeNATGateway(nat))
	}

	log.Debug().Str("vpc_id", vpcID).Int("count", len(nats)).Msg("collected NAT gateways")

	return &NATGatewaysData{
		TotalCount:  len(nats),
		NATGateways: nats,
		Raw:         out.NatGateways,
	}, nil
}

func normalizeNATGateway(nat ec2types.NatGateway) NATGateway {
	addresses := make([]NATGatewayAddress, 0, len(nat.NatGatewayAddresses))
	var primaryPublicIP *string
	for _, addr := range nat.NatGatewayAddresses {
		a := NATGatewayAddress{
			AllocationID:       aws.ToString(addr.AllocationId),
			NetworkInterfaceID: aws.ToString(addr.NetworkInterfaceId),
			PrivateIP:          aws.ToString(addr.PrivateIp),
			PublicIP:           aws.ToString(addr.PublicIp),
			AssociationID:      aws.ToString(addr.AssociationId),
			IsPrimary:          aws.ToBool(addr.IsPrimary),
			FailureMessage:     addr.FailureMessage,
			Status:             string(addr.Status),
		}
		addresses = append(addresses, a)
		if primaryPublicIP == nil && a.IsPrimary && a.PublicIP != "" {
			primaryPublicIP = aws.String(a.PublicIP)
		}
	}

	connectivity := string(nat.ConnectivityType)
	if connectivity == "" {
		connectivity = "public"
	}

	return NATGateway{
		NATGatewayID:        aws.ToString(nat.NatGatewayId),
		SubnetID:            aws.ToString(nat.SubnetId),
		VPCID:               aws.ToString(nat.VpcId),
		State:               string(nat.State),
		CreateTime:          nat.CreateTime,
		DeleteTime:          nat.DeleteTime,
		FailureCode:         nat.FailureCode,
		FailureMessage:      nat.FailureMessage,
		ConnectivityType:    connectivity,
		NATGatewayAddresses: addresses,
		PrimaryPublicIP:     primaryPublicIP,
		AddressCount:        len(addresses),
		Tags:                convertTags(nat.Tags),
		Name:                nameFromTags(nat.Tags),
	}
}

// ElasticIP is the normalized record for one VPC-domain Elastic IP.
type ElasticIP struct {
	PublicIP                string  `json:"public_ip" yaml:"public_ip"`
	AllocationID            string  `json:"allocation_id" yaml:"allocation_id"`
	Domain                  string  `json:"domain" yaml:"domain"`
	InstanceID              *string `json:"instance_id" yaml:"instance_id"`
	AssociationID           *string `json:"association_id" yaml:"association_id"`
	NetworkInterfaceID      *string `json:"network_interface_id" yaml:"network_interface_id"`
	NetworkInterfaceOwnerID *string `json:"network_interface_owner_id" yaml:"network_interface_owner_id"`
	PrivateIPAddress        *string `json:"private_ip_address" yaml:"private_ip_address"`
	NetworkBorderGroup      *string `json:"network_border_group" yaml:"network_border_group"`
	CustomerOwnedIP         *string `json:"customer_owned_ip" yaml:"customer_owned_ip"`
	CustomerOwnedIPv4Pool   *string `json:"customer_owned_ipv4_pool" yaml:"customer_owned_ipv4_pool"`
	CarrierIP               *string `json:"carrier_ip" yaml:"carrier_ip"`
	PublicIPv4Pool          string  `json:"public_ipv4_pool" yaml:"public_ipv4_pool"`
	IsAssociated            bool    `json:"is_associated" yaml:"is_associated"`
	Tags                    []Tag   `json:"tags" yaml:"tags"`
	Name                    *string `json:"name" yaml:"name"`
}

// ElasticIPsData is the "elastic_ips" section payload. EIPs have no direct
// VPC filter, so all VPC-domain addresses in the region are reported along
// with their association state.
type ElasticIPsData struct {
	TotalCount        int                `json:"total_count" yaml:"total_count"`
	AssociatedCount   int                `json:"associated_count" yaml:"associated_count"`
	UnassociatedCount int                `json:"unassociated_count" yaml:"unassociated_count"`
	ElasticIPs        []ElasticIP        `json:"elastic_ips" yaml:"elastic_ips"`
	Raw               []ec2types.Address `json:"raw_data" yaml:"raw_data"`
}

func (*ElasticIPsData) sectionData() {}

// FetchElasticIPs collects all VPC-domain Elastic IPs in the region.
// Addresses carry no VPC reference, so the result is region-wide; vpcID
// only scopes the logging.
func FetchElasticIPs(ctx context.Context, q QueryService, vpcID string) (*ElasticIPsData, error) {
	out, err := q.DescribeAddresses(ctx, &ec2.DescribeAddressesInput{
		Filters: []ec2types.Filter{{
			Name:   aws.String("domain"),
			Values: []string{"vpc"},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe addresses: %w", err)
	}

	eips := make([]ElasticIP, 0, len(out.Addresses))
	associated := 0
	for _, addr := range out.Addresses {
		domain := string(addr.Domain)
		if domain == "" {
			domain = "vpc"
		}
		pool := aws.ToString(addr.PublicIpv4Pool)
		if pool == "" {
			pool = "amazon"
		}

		eip := ElasticIP{
			PublicIP:                aws.ToString(addr.PublicIp),
			AllocationID:            aws.ToString(addr.AllocationId),
			Domain:                  domain,
			InstanceID:              addr.InstanceId,
			AssociationID:           addr.AssociationId,
			NetworkInterfaceID:      addr.NetworkInterfaceId,
			NetworkInterfaceOwnerID: addr.NetworkInterfaceOwnerId,
			PrivateIPAddress:        addr.PrivateIpAddress,
			NetworkBorderGroup:      addr.NetworkBorderGroup,
			CustomerOwnedIP:         addr.CustomerOwnedIp,
			CustomerOwnedIPv4Pool:   addr.CustomerOwnedIpv4Pool,
			CarrierIP:               addr.CarrierIp,
			PublicIPv4Pool:          pool,
			IsAssociated:            aws.ToString(addr.AssociationId) != "",
			Tags:                    convertTags(addr.Tags),
			Name:                    nameFromTags(addr.Tags),
		}
		if eip.IsAssociated {
			associated++
		}
		eips = append(eips, eip)
	}

	log.Debug().Str("vpc_id", vpcID).Int("count", len(eips)).Msg("collected elastic IPs")

	return &ElasticIPsData{
		TotalCount:        len(eips),
		AssociatedCount:   associated,
		UnassociatedCount: len(eips) - associated,
		ElasticIPs:        eips,
		Raw:               out.Addresses,
	}, nil
}
