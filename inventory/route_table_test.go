package inventory

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeRoute_TargetPriority(t *testing.T) {
	tests := []struct {
		name       string
		route      ec2types.Route
		targetType string
		target     string
	}{
		{
			name:       "gateway",
			route:      ec2types.Route{GatewayId: aws.String("igw-1")},
			targetType: "Gateway",
			target:     "igw-1",
		},
		{
			name:       "nat gateway",
			route:      ec2types.Route{NatGatewayId: aws.String("nat-1")},
			targetType: "NAT Gateway",
			target:     "nat-1",
		},
		{
			name:       "transit gateway",
			route:      ec2types.Route{TransitGatewayId: aws.String("tgw-1")},
			targetType: "Transit Gateway",
			target:     "tgw-1",
		},
		{
			name:       "peering",
			route:      ec2types.Route{VpcPeeringConnectionId: aws.String("pcx-1")},
			targetType: "VPC Peering",
			target:     "pcx-1",
		},
		{
			name: "gateway wins over instance",
			route: ec2types.Route{
				GatewayId:  aws.String("igw-1"),
				InstanceId: aws.String("i-1"),
			},
			targetType: "Gateway",
			target:     "igw-1",
		},
		{
			name:       "no target",
			route:      ec2types.Route{},
			targetType: "Unknown",
			target:     "N/A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeRoute(tt.route)
			assert.Equal(t, tt.targetType, got.TargetType)
			assert.Equal(t, tt.target, got.Target)
		})
	}
}

func TestNormalizeRoute_Destination(t *testing.T) {
	got := normalizeRoute(ec2types.Route{
		DestinationIpv6CidrBlock: aws.String("::/0"),
		GatewayId:                aws.String("eigw-1"),
		State:                    ec2types.RouteStateActive,
		Origin:                   ec2types.RouteOriginCreateRoute,
	})
	assert.Equal(t, "::/0", got.Destination)
	assert.Equal(t, "active", got.State)
	assert.Equal(t, "CreateRoute", got.Origin)

	got = normalizeRoute(ec2types.Route{DestinationPrefixListId: aws.String("pl-1")})
	assert.Equal(t, "pl-1", got.Destination)
	assert.Equal(t, "unknown", got.State)
}

func TestNormalizeRouteTable_MainAndAssociations(t *testing.T) {
	rt := ec2types.RouteTable{
		RouteTableId: aws.String("rtb-1"),
		VpcId:        aws.String("vpc-1"),
		Associations: []ec2types.RouteTableAssociation{
			{
				RouteTableAssociationId: aws.String("rtbassoc-main"),
				Main:                    aws.Bool(true),
			},
			{
				RouteTableAssociationId: aws.String("rtbassoc-1"),
				SubnetId:                aws.String("subnet-1"),
				Main:                    aws.Bool(false),
				AssociationState: &ec2types.RouteTableAssociationState{
					State: ec2types.RouteTableAssociationStateCodeAssociated,
				},
			},
		},
		PropagatingVgws: []ec2types.PropagatingVgw{
			{GatewayId: aws.String("vgw-1")},
		},
		Tags: []ec2types.Tag{
			{Key: aws.String("Name"), Value: aws.String("main-rt")},
		},
	}

	got := normalizeRouteTable(rt)
	assert.True(t, got.IsMain)
	assert.Equal(t, []string{"subnet-1"}, got.AssociatedSubnets)
	assert.Len(t, got.Associations, 2)
	assert.Equal(t, "associated", got.Associations[1].AssociationState)
	assert.Equal(t, []string{"vgw-1"}, got.PropagatingVGWs)
	assert.Equal(t, "main-rt", aws.ToString(got.Name))
}
