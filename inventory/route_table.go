package inventory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/rs/zerolog/log"
)

// Route is one normalized route entry.
type Route struct {
	Destination string `json:"destination" yaml:"destination"`
	Target      string `json:"target" yaml:"target"`
	TargetType  string `json:"target_type" yaml:"target_type"`
	State       string `json:"state" yaml:"state"`
	Origin      string `json:"origin" yaml:"origin"`
}

// RouteTableAssociation is one normalized route table association.
type RouteTableAssociation struct {
	RouteTableAssociationID string `json:"route_table_association_id" yaml:"route_table_association_id"`
	SubnetID                string `json:"subnet_id" yaml:"subnet_id"`
	GatewayID               string `json:"gateway_id" yaml:"gateway_id"`
	Main                    bool   `json:"main" yaml:"main"`
	AssociationState        string `json:"association_state" yaml:"association_state"`
}

// RouteTable is the normalized record for one route table.
type RouteTable struct {
	RouteTableID      string                  `json:"route_table_id" yaml:"route_table_id"`
	VPCID             string                  `json:"vpc_id" yaml:"vpc_id"`
	OwnerID           string                  `json:"owner_id" yaml:"owner_id"`
	IsMain            bool                    `json:"is_main" yaml:"is_main"`
	AssociatedSubnets []string                `json:"associated_subnets" yaml:"associated_subnets"`
	Associations      []RouteTableAssociation `json:"associations" yaml:"associations"`
	Routes            []Route                 `json:"routes" yaml:"routes"`
	PropagatingVGWs   []string                `json:"propagating_vgws" yaml:"propagating_vgws"`
	Name              *string                 `json:"name" yaml:"name"`
	Tags              []Tag                   `json:"tags" yaml:"tags"`
}

// RouteTablesData is the "route_tables" section payload.
type RouteTablesData struct {
	TotalCount  int                   `json:"total_count" yaml:"total_count"`
	RouteTables []RouteTable          `json:"route_tables" yaml:"route_tables"`
	Raw         []ec2types.RouteTable `json:"raw_data" yaml:"raw_data"`
}

func (*RouteTablesData) sectionData() {}

// FetchRouteTables collects and normalizes all route tables of a VPC.
func FetchRouteTables(ctx context.Context, q QueryService, vpcID string) (*RouteTablesData, error) {
	out, err := q.DescribeRouteTables(ctx, &ec2.DescribeRouteTablesInput{
		Filters: vpcFilter(vpcID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe route tables: %w", err)
	}

	tables := make([]RouteTable, 0, len(out.RouteTables))
	for _, rt := range out.RouteTables {
		tables = append(tables, normalizeRouteTable(rt))
	}

	log.Debug().Str("vpc_id", vpcID).Int("count", len(tables)).Msg("collected route tables")

	return &RouteTablesData{
		TotalCount:  len(tables),
		RouteTables: tables,
		Raw:         out.RouteTables,
	}, nil
}

func normalizeRouteTable(rt ec2types.RouteTable) RouteTable {
	isMain := false
	associatedSubnets := []string{}
	associations := make([]RouteTableAssociation, 0, len(rt.Associations))
	for _, assoc := range rt.Associations {
		if aws.ToBool(assoc.Main) {
			isMain = true
		}
		if subnetID := aws.ToString(assoc.SubnetId); subnetID != "" {
			associatedSubnets = append(associatedSubnets, subnetID)
		}
		a := RouteTableAssociation{
			RouteTableAssociationID: aws.ToString(assoc.RouteTableAssociationId),
			SubnetID:                aws.ToString(assoc.SubnetId),
			GatewayID:               aws.ToString(assoc.GatewayId),
			Main:                    aws.ToBool(assoc.Main),
		}
		if assoc.AssociationState != nil {
			a.AssociationState = string(assoc.AssociationState.State)
		}
		associations = append(associations, a)
	}

	routes := make([]Route, 0, len(rt.Routes))
	for _, route := range rt.Routes {
		routes = append(routes, normalizeRoute(route))
	}

	propagating := []string{}
	for _, vgw := range rt.PropagatingVgws {
		propagating = append(propagating, aws.ToString(vgw.GatewayId))
	}

	return RouteTable{
		RouteTableID:      aws.ToString(rt.RouteTableId),
		VPCID:             aws.ToString(rt.VpcId),
		OwnerID:           aws.ToString(rt.OwnerId),
		IsMain:            isMain,
		AssociatedSubnets: associatedSubnets,
		Associations:      associations,
		Routes:            routes,
		PropagatingVGWs:   propagating,
		Name:              nameFromTags(rt.Tags),
		Tags:              convertTags(rt.Tags),
	}
}

// normalizeRoute resolves the route target by first-match priority across the
// possible target reference fields. AWS populates exactly one in practice;
// the fixed order keeps output deterministic if more than one were ever set.
func normalizeRoute(route ec2types.Route) Route {
	targetType := "Unknown"
	target := "N/A"

	switch {
	case aws.ToString(route.GatewayId) != "":
		targetType, target = "Gateway", aws.ToString(route.GatewayId)
	case aws.ToString(route.NatGatewayId) != "":
		targetType, target = "NAT Gateway", aws.ToString(route.NatGatewayId)
	case aws.ToString(route.TransitGatewayId) != "":
		targetType, target = "Transit Gateway", aws.ToString(route.TransitGatewayId)
	case aws.ToString(route.VpcPeeringConnectionId) != "":
		targetType, target = "VPC Peering", aws.ToString(route.VpcPeeringConnectionId)
	case aws.ToString(route.NetworkInterfaceId) != "":
		targetType, target = "Network Interface", aws.ToString(route.NetworkInterfaceId)
	case aws.ToString(route.InstanceId) != "":
		targetType, target = "Instance", aws.ToString(route.InstanceId)
	case aws.ToString(route.LocalGatewayId) != "":
		targetType, target = "Local Gateway", aws.ToString(route.LocalGatewayId)
	case aws.ToString(route.CarrierGatewayId) != "":
		targetType, target = "Carrier Gateway", aws.ToString(route.CarrierGatewayId)
	case aws.ToString(route.EgressOnlyInternetGatewayId) != "":
		targetType, target = "Egress-Only IGW", aws.ToString(route.EgressOnlyInternetGatewayId)
	case aws.ToString(route.CoreNetworkArn) != "":
		targetType, target = "Core Network", aws.ToString(route.CoreNetworkArn)
	}

	destination := "N/A"
	switch {
	case aws.ToString(route.DestinationCidrBlock) != "":
		destination = aws.ToString(route.DestinationCidrBlock)
	case aws.ToString(route.DestinationIpv6CidrBlock) != "":
		destination = aws.ToString(route.DestinationIpv6CidrBlock)
	case aws.ToString(route.DestinationPrefixListId) != "":
		destination = aws.ToString(route.DestinationPrefixListId)
	}

	state := string(route.State)
	if state == "" {
		state = "unknown"
	}
	origin := string(route.Origin)
	if origin == "" {
		origin = "unknown"
	}

	return Route{
		Destination: destination,
		Target:      target,
		TargetType:  targetType,
		State:       state,
		Origin:      origin,
	}
}
