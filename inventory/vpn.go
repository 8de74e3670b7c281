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

// TunnelOption describes the IPSec configuration of one VPN tunnel.
type TunnelOption struct {
	OutsideIPAddress       *string `json:"outside_ip_address" yaml:"outside_ip_address"`
	TunnelInsideCIDR       *string `json:"tunnel_inside_cidr" yaml:"tunnel_inside_cidr"`
	TunnelInsideIPv6CIDR   *string `json:"tunnel_inside_ipv6_cidr" yaml:"tunnel_inside_ipv6_cidr"`
	PreSharedKey           *string `json:"pre_shared_key" yaml:"pre_shared_key"`
	Phase1LifetimeSeconds  *int32  `json:"phase1_lifetime_seconds" yaml:"phase1_lifetime_seconds"`
	Phase2LifetimeSeconds  *int32  `json:"phase2_lifetime_seconds" yaml:"phase2_lifetime_seconds"`
	RekeyMarginTimeSeconds *int32  `json:"rekey_margin_time_seconds" yaml:"rekey_margin_time_seconds"`
	RekeyFuzzPercentage    *int32  `json:"rekey_fuzz_percentage" yaml:"rekey_fuzz_percentage"`
	ReplayWindowSize       *int32  `json:"replay_window_size" yaml:"replay_window_size"`
	DPDTimeoutSeconds      *int32  `json:"dpd_timeout_seconds" yaml:"dpd_timeout_seconds"`
	DPDTimeoutAction       *string `json:"dpd_timeout_action" yaml:"dpd_timeout_action"`
	StartupAction          *string `json:"startup_action" yaml:"startup_action"`
}

// VPNStaticRoute is a static route propagated over a VPN connection.
type VPNStaticRoute struct {
	DestinationCIDRBlock string `json:"destination_cidr_block" yaml:"destination_cidr_block"`
	Source               string `json:"source" yaml:"source"`
	State                string `json:"state" yaml:"state"`
}

// TunnelTelemetry is the live status of one VPN tunnel as reported by the
// virtual gateway.
type TunnelTelemetry struct {
	OutsideIPAddress   string     `json:"outside_ip_address" yaml:"outside_ip_address"`
	Status             string     `json:"status" yaml:"status"`
	LastStatusChange   *time.Time `json:"last_status_change" yaml:"last_status_change"`
	StatusMessage      string     `json:"status_message" yaml:"status_message"`
	AcceptedRouteCount int32      `json:"accepted_route_count" yaml:"accepted_route_count"`
	CertificateARN     *string    `json:"certificate_arn" yaml:"certificate_arn"`
}

// VPNConnection is the normalized record for one site-to-site VPN connection.
type VPNConnection struct {
	VPNConnectionID          string  `json:"vpn_connection_id" yaml:"vpn_connection_id"`
	State                    string  `json:"state" yaml:"state"`
	Type                     string  `json:"type" yaml:"type"`
	Category                 string  `json:"category" yaml:"category"`
	CustomerGatewayID        *string `json:"customer_gateway_id" yaml:"customer_gateway_id"`
	VPNGatewayID             *string `json:"vpn_gateway_id" yaml:"vpn_gateway_id"`
	TransitGatewayID         *string `json:"transit_gateway_id" yaml:"transit_gateway_id"`
	GatewayType              string  `json:"gateway_type" yaml:"gateway_type"`
	GatewayID                *string `json:"gateway_id" yaml:"gateway_id"`
	CoreNetworkARN           *string `json:"core_network_arn" yaml:"core_network_arn"`
	CoreNetworkAttachmentARN *string `json:"core_network_attachment_arn" yaml:"core_network_attachment_arn"`
	GatewayAssociationState  string  `json:"gateway_association_state" yaml:"gateway_association_state"`

	EnableAcceleration                  bool    `json:"enable_acceleration" yaml:"enable_acceleration"`
	StaticRoutesOnly                    bool    `json:"static_routes_only" yaml:"static_routes_only"`
	LocalIPv4NetworkCIDR                *string `json:"local_ipv4_network_cidr" yaml:"local_ipv4_network_cidr"`
	RemoteIPv4NetworkCIDR               *string `json:"remote_ipv4_network_cidr" yaml:"remote_ipv4_network_cidr"`
	LocalIPv6NetworkCIDR                *string `json:"local_ipv6_network_cidr" yaml:"local_ipv6_network_cidr"`
	RemoteIPv6NetworkCIDR               *string `json:"remote_ipv6_network_cidr" yaml:"remote_ipv6_network_cidr"`
	OutsideIPAddressType                *string `json:"outside_ip_address_type" yaml:"outside_ip_address_type"`
	TransportTransitGatewayAttachmentID *string `json:"transport_transit_gateway_attachment_id" yaml:"transport_transit_gateway_attachment_id"`
	TunnelInsideIPVersion               string  `json:"tunnel_inside_ip_version" yaml:"tunnel_inside_ip_version"`

	TunnelOptions []TunnelOption `json:"tunnel_options" yaml:"tunnel_options"`
	TunnelCount   int            `json:"tunnel_count" yaml:"tunnel_count"`

	Routes     []VPNStaticRoute `json:"routes" yaml:"routes"`
	RouteCount int              `json:"route_count" yaml:"route_count"`

	VGWTelemetry        []TunnelTelemetry `json:"vgw_telemetry" yaml:"vgw_telemetry"`
	TunnelStatusSummary map[string]int    `json:"tunnel_status_summary" yaml:"tunnel_status_summary"`
	TunnelsUp           int               `json:"tunnels_up" yaml:"tunnels_up"`
	TunnelsDown         int               `json:"tunnels_down" yaml:"tunnels_down"`
	AllTunnelsUp        bool              `json:"all_tunnels_up" yaml:"all_tunnels_up"`

	Tags []Tag   `json:"tags" yaml:"tags"`
	Name *string `json:"name" yaml:"name"`
}

// VPNConnectionsData is the "vpn_connections" section payload. VPN
// connections attach to virtual or transit gateways rather than to a VPC,
// so the query is region-wide.
type VPNConnectionsData struct {
	TotalCount     int                      `json:"total_count" yaml:"total_count"`
	VPNConnections []VPNConnection          `json:"vpn_connections" yaml:"vpn_connections"`
	Raw            []ec2types.VpnConnection `json:"raw_data" yaml:"raw_data"`
}

func (*VPNConnectionsData) sectionData() {}

// FetchVPNConnections collects all VPN connections in the region.
func FetchVPNConnections(ctx context.Context, q QueryService, vpcID string) (*VPNConnectionsData, error) {
	out, err := q.DescribeVpnConnections(ctx, &ec2.DescribeVpnConnectionsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe vpn connections: %w", err)
	}

	connections := make([]VPNConnection, 0, len(out.VpnConnections))
	for _, vpn := range out.VpnConnections {
		connections = append(connections, normalizeVPNConnection(vpn))
	}

	log.Debug().Str("vpc_id", vpcID).Int("count", len(connections)).Msg("collected vpn connections")

	return &VPNConnectionsData{
		TotalCount:     len(connections),
		VPNConnections: connections,
		Raw:            out.VpnConnections,
	}, nil
}

func normalizeVPNConnection(vpn ec2types.VpnConnection) VPNConnection {
	rec := VPNConnection{
		VPNConnectionID:          aws.ToString(vpn.VpnConnectionId),
		State:                    string(vpn.State),
		Type:                     string(vpn.Type),
		Category:                 aws.ToString(vpn.Category),
		CustomerGatewayID:        vpn.CustomerGatewayId,
		VPNGatewayID:             vpn.VpnGatewayId,
		TransitGatewayID:         vpn.TransitGatewayId,
		GatewayType:              "unknown",
		CoreNetworkARN:           vpn.CoreNetworkArn,
		CoreNetworkAttachmentARN: vpn.CoreNetworkAttachmentArn,
		GatewayAssociationState:  string(vpn.GatewayAssociationState),
		TunnelInsideIPVersion:    "ipv4",
		TunnelOptions:            []TunnelOption{},
		Routes:                   []VPNStaticRoute{},
		VGWTelemetry:             []TunnelTelemetry{},
		TunnelStatusSummary:      map[string]int{"up": 0, "down": 0, "unknown": 0},
		Tags:                     convertTags(vpn.Tags),
		Name:                     nameFromTags(vpn.Tags),
	}
	if rec.Type == "" {
		rec.Type = "ipsec.1"
	}
	if rec.Category == "" {
		rec.Category = "VPN"
	}

	if vpn.VpnGatewayId != nil {
		rec.GatewayType = "vpn_gateway"
		rec.GatewayID = vpn.VpnGatewayId
	} else if vpn.TransitGatewayId != nil {
		rec.GatewayType = "transit_gateway"
		rec.GatewayID = vpn.TransitGatewayId
	}

	if opts := vpn.Options; opts != nil {
		rec.EnableAcceleration = aws.ToBool(opts.EnableAcceleration)
		rec.StaticRoutesOnly = aws.ToBool(opts.StaticRoutesOnly)
		rec.LocalIPv4NetworkCIDR = opts.LocalIpv4NetworkCidr
		rec.RemoteIPv4NetworkCIDR = opts.RemoteIpv4NetworkCidr
		rec.LocalIPv6NetworkCIDR = opts.LocalIpv6NetworkCidr
		rec.RemoteIPv6NetworkCIDR = opts.RemoteIpv6NetworkCidr
		rec.OutsideIPAddressType = opts.OutsideIpAddressType
		rec.TransportTransitGatewayAttachmentID = opts.TransportTransitGatewayAttachmentId
		if opts.TunnelInsideIpVersion != "" {
			rec.TunnelInsideIPVersion = string(opts.TunnelInsideIpVersion)
		}
		for _, tunnel := range opts.TunnelOptions {
			rec.TunnelOptions = append(rec.TunnelOptions, TunnelOption{
				OutsideIPAddress:       tunnel.OutsideIpAddress,
				TunnelInsideCIDR:       tunnel.TunnelInsideCidr,
				TunnelInsideIPv6CIDR:   tunnel.TunnelInsideIpv6Cidr,
				PreSharedKey:           tunnel.PreSharedKey,
				Phase1LifetimeSeconds:  tunnel.Phase1LifetimeSeconds,
				Phase2LifetimeSeconds:  tunnel.Phase2LifetimeSeconds,
				RekeyMarginTimeSeconds: tunnel.RekeyMarginTimeSeconds,
				RekeyFuzzPercentage:    tunnel.RekeyFuzzPercentage,
				ReplayWindowSize:       tunnel.ReplayWindowSize,
				DPDTimeoutSeconds:      tunnel.DpdTimeoutSeconds,
				DPDTimeoutAction:       tunnel.DpdTimeoutAction,
				StartupAction:          tunnel.StartupAction,
			})
		}
	}
	rec.TunnelCount = len(rec.TunnelOptions)

	for _, route := range vpn.Routes {
		rec.Routes = append(rec.Routes, VPNStaticRoute{
			DestinationCIDRBlock: aws.ToString(route.DestinationCidrBlock),
			Source:               string(route.Source),
			State:                string(route.State),
		})
	}
	rec.RouteCount = len(rec.Routes)

	for _, telem := range vpn.VgwTelemetry {
		status := string(telem.Status)
		bucket := strings.ToLower(status)
		if bucket == "" {
			bucket = "unknown"
		}
		rec.TunnelStatusSummary[bucket]++

		rec.VGWTelemetry = append(rec.VGWTelemetry, TunnelTelemetry{
			OutsideIPAddress:   aws.ToString(telem.OutsideIpAddress),
			Status:             status,
			LastStatusChange:   telem.LastStatusChange,
			StatusMessage:      aws.ToString(telem.StatusMessage),
			AcceptedRouteCount: aws.ToInt32(telem.AcceptedRouteCount),
			CertificateARN:     telem.CertificateArn,
		})
	}
	rec.TunnelsUp = rec.TunnelStatusSummary["up"]
	rec.TunnelsDown = rec.TunnelStatusSummary["down"]
	rec.AllTunnelsUp = len(rec.VGWTelemetry) > 0 && rec.TunnelsUp == len(rec.VGWTelemetry)

	return rec
}

// CustomerGateway is the normalized record for one customer gateway.
type CustomerGateway struct {
	CustomerGatewayID string  `json:"customer_gateway_id" yaml:"customer_gateway_id"`
	State             string  `json:"state" yaml:"state"`
	Type              string  `json:"type" yaml:"type"`
	IPAddress         *string `json:"ip_address" yaml:"ip_address"`
	BGPASN            *string `json:"bgp_asn" yaml:"bgp_asn"`
	DeviceName        *string `json:"device_name" yaml:"device_name"`
	CertificateARN    *string `json:"certificate_arn" yaml:"certificate_arn"`
	Tags              []Tag   `json:"tags" yaml:"tags"`
	Name              *string `json:"name" yaml:"name"`
}

// CustomerGatewaysData is the "customer_gateways" section payload. Customer
// gateways are region-scoped, not VPC-scoped.
type CustomerGatewaysData struct {
	TotalCount       int                        `json:"total_count" yaml:"total_count"`
	CustomerGateways []CustomerGateway          `json:"customer_gateways" yaml:"customer_gateways"`
	Raw              []ec2types.CustomerGateway `json:"raw_data" yaml:"raw_data"`
}

func (*CustomerGatewaysData) sectionData() {}

// FetchCustomerGateways collects all customer gateways in the region.
func FetchCustomerGateways(ctx context.Context, q QueryService, vpcID string) (*CustomerGatewaysData, error) {
	out, err := q.DescribeCustomerGateways(ctx, &ec2.DescribeCustomerGatewaysInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe customer gateways: %w", err)
	}

	gateways := make([]CustomerGateway, 0, len(out.CustomerGateways))
	for _, cgw := range out.CustomerGateways {
		rec := CustomerGateway{
			CustomerGatewayID: aws.ToString(cgw.CustomerGatewayId),
			State:             aws.ToString(cgw.State),
			Type:              aws.ToString(cgw.Type),
			IPAddress:         cgw.IpAddress,
			BGPASN:            cgw.BgpAsn,
			DeviceName:        cgw.DeviceName,
			CertificateARN:    cgw.CertificateArn,
			Tags:              convertTags(cgw.Tags),
			Name:              nameFromTags(cgw.Tags),
		}
		if rec.Type == "" {
			rec.Type = "ipsec.1"
		}
		gateways = append(gateways, rec)
	}

	log.Debug().Str("vpc_id", vpcID).Int("count", len(gateways)).Msg("collected customer gateways")

	return &CustomerGatewaysData{
		TotalCount:       len(gateways),
		CustomerGateways: gateways,
		Raw:              out.CustomerGateways,
	}, nil
}

// VGWAttachment is a VPC attachment of a virtual private gateway.
type VGWAttachment struct {
	VPCID string `json:"vpc_id" yaml:"vpc_id"`
	State string `json:"state" yaml:"state"`
}

// VPNGateway is the normalized record for one virtual private gateway.
type VPNGateway struct {
	VPNGatewayID     string          `json:"vpn_gateway_id" yaml:"vpn_gateway_id"`
	State            string          `json:"state" yaml:"state"`
	Type             string          `json:"type" yaml:"type"`
	AvailabilityZone *string         `json:"availability_zone" yaml:"availability_zone"`
	VPCAttachments   []VGWAttachment `json:"vpc_attachments" yaml:"vpc_attachments"`
	AttachedVPCID    *string         `json:"attached_vpc_id" yaml:"attached_vpc_id"`
	AttachmentState  *string         `json:"attachment_state" yaml:"attachment_state"`
	AmazonSideASN    *int64          `json:"amazon_side_asn" yaml:"amazon_side_asn"`
	Tags             []Tag           `json:"tags" yaml:"tags"`
	Name             *string         `json:"name" yaml:"name"`
}

// VPNGatewaysData is the "vpn_gateways" section payload.
type VPNGatewaysData struct {
	TotalCount  int                   `json:"total_count" yaml:"total_count"`
	VPNGateways []VPNGateway          `json:"vpn_gateways" yaml:"vpn_gateways"`
	Raw         []ec2types.VpnGateway `json:"raw_data" yaml:"raw_data"`
}

func (*VPNGatewaysData) sectionData() {}

// FetchVPNGateways collects virtual private gateways attached to the VPC.
func FetchVPNGateways(ctx context.Context, q QueryService, vpcID string) (*VPNGatewaysData, error) {
	out, err := q.DescribeVpnGateways(ctx, &ec2.DescribeVpnGatewaysInput{
		Filters: []ec2types.Filter{{
			Name:   aws.String("attachment.vpc-id"),
			Values: []string{vpcID},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe vpn gateways: %w", err)
	}

	gateways := make([]VPNGateway, 0, len(out.VpnGateways))
	for _, vgw := range out.VpnGateways {
		attachments := make([]VGWAttachment, 0, len(vgw.VpcAttachments))
		for _, att := range vgw.VpcAttachments {
			attachments = append(attachments, VGWAttachment{
				VPCID: aws.ToString(att.VpcId),
				State: string(att.State),
			})
		}

		rec := VPNGateway{
			VPNGatewayID:     aws.ToString(vgw.VpnGatewayId),
			State:            string(vgw.State),
			Type:             string(vgw.Type),
			AvailabilityZone: vgw.AvailabilityZone,
			VPCAttachments:   attachments,
			AmazonSideASN:    vgw.AmazonSideAsn,
			Tags:             convertTags(vgw.Tags),
			Name:             nameFromTags(vgw.Tags),
		}
		if rec.Type == "" {
			rec.Type = "ipsec.1"
		}
		if len(attachments) > 0 {
			rec.AttachedVPCID = aws.String(attachments[0].VPCID)
			rec.AttachmentState = aws.String(attachments[0].State)
		}
		gateways = append(gateways, rec)
	}

	log.Debug().Str("vpc_id", vpcID).Int("count", len(gateways)).Msg("collected vpn gateways")

	return &VPNGatewaysData{
		TotalCount:  len(gateways),
		VPNGateways: gateways,
		Raw:         out.VpnGateways,
	}, nil
}
