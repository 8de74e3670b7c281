package inventory

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/directconnect"
	dctypes "github.com/aws/aws-sdk-go-v2/service/directconnect/types"
	"github.com/rs/zerolog/log"
)

// BGPPeer is the normalized record for one BGP peering session on a
// Direct Connect virtual interface.
type BGPPeer struct {
	BGPPeerID          *string `json:"bgp_peer_id" yaml:"bgp_peer_id"`
	ASN                int32   `json:"asn" yaml:"asn"`
	AuthKey            *string `json:"auth_key" yaml:"auth_key"`
	AddressFamily      string  `json:"address_family" yaml:"address_family"`
	AmazonAddress      *string `json:"amazon_address" yaml:"amazon_address"`
	CustomerAddress    *string `json:"customer_address" yaml:"customer_address"`
	BGPPeerState       string  `json:"bgp_peer_state" yaml:"bgp_peer_state"`
	BGPStatus          string  `json:"bgp_status" yaml:"bgp_status"`
	AWSDeviceV2        *string `json:"aws_device_v2" yaml:"aws_device_v2"`
	AWSLogicalDeviceID *string `json:"aws_logical_device_id" yaml:"aws_logical_device_id"`
}

// VirtualInterface is the normalized record for one Direct Connect VIF.
type VirtualInterface struct {
	VirtualInterfaceID    string  `json:"virtual_interface_id" yaml:"virtual_interface_id"`
	VirtualInterfaceName  *string `json:"virtual_interface_name" yaml:"virtual_interface_name"`
	VirtualInterfaceType  *string `json:"virtual_interface_type" yaml:"virtual_interface_type"`
	VirtualInterfaceState string  `json:"virtual_interface_state" yaml:"virtual_interface_state"`
	VLAN                  int32   `json:"vlan" yaml:"vlan"`
	Location              *string `json:"location" yaml:"location"`
	ConnectionID          *string `json:"connection_id" yaml:"connection_id"`
	OwnerAccount          *string `json:"owner_account" yaml:"owner_account"`
	Region                *string `json:"region" yaml:"region"`

	ASN             int32   `json:"asn" yaml:"asn"`
	AmazonSideASN   *int64  `json:"amazon_side_asn" yaml:"amazon_side_asn"`
	AuthKey         *string `json:"auth_key" yaml:"auth_key"`
	AmazonAddress   *string `json:"amazon_address" yaml:"amazon_address"`
	CustomerAddress *string `json:"customer_address" yaml:"customer_address"`
	AddressFamily   string  `json:"address_family" yaml:"address_family"`

	MTU                *int32  `json:"mtu" yaml:"mtu"`
	JumboFrameCapable  bool    `json:"jumbo_frame_capable" yaml:"jumbo_frame_capable"`
	AWSDeviceV2        *string `json:"aws_device_v2" yaml:"aws_device_v2"`
	AWSLogicalDeviceID *string `json:"aws_logical_device_id" yaml:"aws_logical_device_id"`

	VirtualGatewayID       *string `json:"virtual_gateway_id" yaml:"virtual_gateway_id"`
	DirectConnectGatewayID *string `json:"direct_connect_gateway_id" yaml:"direct_connect_gateway_id"`

	RouteFilterPrefixes []string `json:"route_filter_prefixes" yaml:"route_filter_prefixes"`
	RouteFilterCount    int      `json:"route_filter_count" yaml:"route_filter_count"`

	BGPPeers         []BGPPeer      `json:"bgp_peers" yaml:"bgp_peers"`
	BGPPeerCount     int            `json:"bgp_peer_count" yaml:"bgp_peer_count"`
	BGPStatusSummary map[string]int `json:"bgp_status_summary" yaml:"bgp_status_summary"`
	BGPSessionsUp    int            `json:"bgp_sessions_up" yaml:"bgp_sessions_up"`
	BGPSessionsDown  int            `json:"bgp_sessions_down" yaml:"bgp_sessions_down"`
	AllBGPSessionsUp bool           `json:"all_bgp_sessions_up" yaml:"all_bgp_sessions_up"`

	CustomerRouterConfig *string `json:"customer_router_config" yaml:"customer_router_config"`
	SiteLinkEnabled      bool    `json:"site_link_enabled" yaml:"site_link_enabled"`

	Tags []Tag   `json:"tags" yaml:"tags"`
	Name *string `json:"name" yaml:"name"`
}

// DXVIFsData is the "direct_connect_vifs" section payload. The section is
// best effort: accounts without Direct Connect permissions still get a
// success payload carrying the error text instead of a failed section.
type DXVIFsData struct {
	TotalCount        int                        `json:"total_count" yaml:"total_count"`
	VirtualInterfaces []VirtualInterface         `json:"virtual_interfaces" yaml:"virtual_interfaces"`
	Error             string                     `json:"error,omitempty" yaml:"error,omitempty"`
	Raw               []dctypes.VirtualInterface `json:"raw_data,omitempty" yaml:"raw_data,omitempty"`
}

func (*DXVIFsData) sectionData() {}

// FetchDirectConnectVIFs collects all Direct Connect virtual interfaces in
// the region. VIFs attach to gateways rather than to a VPC.
func FetchDirectConnectVIFs(ctx context.Context, q QueryService, vpcID string) (*DXVIFsData, error) {
	out, err := q.DescribeVirtualInterfaces(ctx, &directconnect.DescribeVirtualInterfacesInput{})
	if err != nil {
		log.Warn().Err(err).Msg("failed to describe direct connect virtual interfaces, continuing without them")
		return &DXVIFsData{
			TotalCount:        0,
			VirtualInterfaces: []VirtualInterface{},
			Error:             err.Error(),
		}, nil
	}

	vifs := make([]VirtualInterface, 0, len(out.VirtualInterfaces))
	for _, vif := range out.VirtualInterfaces {
		vifs = append(vifs, normalizeVirtualInterface(vif))
	}

	log.Debug().Str("vpc_id", vpcID).Int("count", len(vifs)).Msg("collected direct connect virtual interfaces")

	return &DXVIFsData{
		TotalCount:        len(vifs),
		VirtualInterfaces: vifs,
		Raw:               out.VirtualInterfaces,
	}, nil
}

func normalizeVirtualInterface(vif dctypes.VirtualInterface) VirtualInterface {
	routeFilters := make([]string, 0, len(vif.RouteFilterPrefixes))
	for _, prefix := range vif.RouteFilterPrefixes {
		routeFilters = append(routeFilters, aws.ToString(prefix.Cidr))
	}

	peers := make([]BGPPeer, 0, len(vif.BgpPeers))
	statusSummary := map[string]int{"up": 0, "down": 0, "unknown": 0}
	for _, peer := range vif.BgpPeers {
		status := strings.ToLower(string(peer.BgpStatus))
		if status == "" {
			status = "unknown"
		}
		statusSummary[status]++

		peers = append(peers, BGPPeer{
			BGPPeerID:          peer.BgpPeerId,
			ASN:                peer.Asn,
			AuthKey:            peer.AuthKey,
			AddressFamily:      string(peer.AddressFamily),
			AmazonAddress:      peer.AmazonAddress,
			CustomerAddress:    peer.CustomerAddress,
			BGPPeerState:       string(peer.BgpPeerState),
			BGPStatus:          string(peer.BgpStatus),
			AWSDeviceV2:        peer.AwsDeviceV2,
			AWSLogicalDeviceID: peer.AwsLogicalDeviceId,
		})
	}

	return VirtualInterface{
		VirtualInterfaceID:     aws.ToString(vif.VirtualInterfaceId),
		VirtualInterfaceName:   vif.VirtualInterfaceName,
		VirtualInterfaceType:   vif.VirtualInterfaceType,
		VirtualInterfaceState:  string(vif.VirtualInterfaceState),
		VLAN:                   vif.Vlan,
		Location:               vif.Location,
		ConnectionID:           vif.ConnectionId,
		OwnerAccount:           vif.OwnerAccount,
		Region:                 vif.Region,
		ASN:                    vif.Asn,
		AmazonSideASN:          vif.AmazonSideAsn,
		AuthKey:                vif.AuthKey,
		AmazonAddress:          vif.AmazonAddress,
		CustomerAddress:        vif.CustomerAddress,
		AddressFamily:          string(vif.AddressFamily),
		MTU:                    vif.Mtu,
		JumboFrameCapable:      aws.ToBool(vif.JumboFrameCapable),
		AWSDeviceV2:            vif.AwsDeviceV2,
		AWSLogicalDeviceID:     vif.AwsLogicalDeviceId,
		VirtualGatewayID:       vif.VirtualGatewayId,
		DirectConnectGatewayID: vif.DirectConnectGatewayId,
		RouteFilterPrefixes:    routeFilters,
		RouteFilterCount:       len(routeFilters),
		BGPPeers:               peers,
		BGPPeerCount:           len(peers),
		BGPStatusSummary:       statusSummary,
		BGPSessionsUp:          statusSummary["up"],
		BGPSessionsDown:        statusSummary["down"],
		AllBGPSessionsUp:       len(peers) > 0 && statusSummary["up"] == len(peers),
		CustomerRouterConfig:   vif.CustomerRouterConfig,
		SiteLinkEnabled:        aws.ToBool(vif.SiteLinkEnabled),
		Tags:                   convertDXTags(vif.Tags),
		Name:                   nameFromDXTags(vif.Tags),
	}
}
