package inventory

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVPNConnection_TunnelSummary(t *testing.T) {
	vpn := ec2types.VpnConnection{
		VpnConnectionId: aws.String("vpn-1"),
		State:           ec2types.VpnStateAvailable,
		VpnGatewayId:    aws.String("vgw-1"),
		VgwTelemetry: []ec2types.VgwTelemetry{
			{OutsideIpAddress: aws.String("1.1.1.1"), Status: ec2types.TelemetryStatusUp},
			{OutsideIpAddress: aws.String("2.2.2.2"), Status: ec2types.TelemetryStatusDown},
		},
	}

	rec := normalizeVPNConnection(vpn)

	assert.Equal(t, 1, rec.TunnelsUp)
	assert.Equal(t, 1, rec.TunnelsDown)
	assert.False(t, rec.AllTunnelsUp)
	assert.Equal(t, map[string]int{"up": 1, "down": 1, "unknown": 0}, rec.TunnelStatusSummary)
	assert.Equal(t, "vpn_gateway", rec.GatewayType)
	require.NotNil(t, rec.GatewayID)
	assert.Equal(t, "vgw-1", *rec.GatewayID)
}

func TestNormalizeVPNConnection_AllTunnelsUp(t *testing.T) {
	vpn := ec2types.VpnConnection{
		VpnConnectionId: aws.String("vpn-2"),
		VgwTelemetry: []ec2types.VgwTelemetry{
			{Status: ec2types.TelemetryStatusUp},
			{Status: ec2types.TelemetryStatusUp},
		},
	}
	assert.True(t, normalizeVPNConnection(vpn).AllTunnelsUp)
}

func TestNormalizeVPNConnection_NoTelemetryIsNotUp(t *testing.T) {
	rec := normalizeVPNConnection(ec2types.VpnConnection{
		VpnConnectionId: aws.String("vpn-3"),
	})

	// Zero tunnels reporting is not a healthy connection.
	assert.False(t, rec.AllTunnelsUp)
	assert.Equal(t, 0, rec.TunnelsUp)
	assert.Equal(t, "unknown", rec.GatewayType)
}

func TestNormalizeVPNConnection_Defaults(t *testing.T) {
	rec := normalizeVPNConnection(ec2types.VpnConnection{
		VpnConnectionId:  aws.String("vpn-4"),
		TransitGatewayId: aws.String("tgw-1"),
	})

	assert.Equal(t, "ipsec.1", rec.Type)
	assert.Equal(t, "VPN", rec.Category)
	assert.Equal(t, "ipv4", rec.TunnelInsideIPVersion)
	assert.Equal(t, "transit_gateway", rec.GatewayType)
	assert.NotNil(t, rec.TunnelOptions)
	assert.NotNil(t, rec.Routes)
}

func TestFetchVPNGateways_FiltersByAttachment(t *testing.T) {
	q := newFakeQuery("vpc-1")
	q.vpnGateways = func(in *ec2.DescribeVpnGatewaysInput) (*ec2.DescribeVpnGatewaysOutput, error) {
		require.Len(t, in.Filters, 1)
		assert.Equal(t, "attachment.vpc-id", aws.ToString(in.Filters[0].Name))
		assert.Equal(t, []string{"vpc-1"}, in.Filters[0].Values)
		return &ec2.DescribeVpnGatewaysOutput{
			VpnGateways: []ec2types.VpnGateway{{
				VpnGatewayId: aws.String("vgw-1"),
				State:        ec2types.VpnStateAvailable,
				VpcAttachments: []ec2types.VpcAttachment{{
					VpcId: aws.String("vpc-1"),
					State: ec2types.AttachmentStatusAttached,
				}},
			}},
		}, nil
	}

	data, err := FetchVPNGateways(context.Background(), q, "vpc-1")
	require.NoError(t, err)

	require.Len(t, data.VPNGateways, 1)
	vgw := data.VPNGateways[0]
	require.NotNil(t, vgw.AttachedVPCID)
	assert.Equal(t, "vpc-1", *vgw.AttachedVPCID)
	require.NotNil(t, vgw.AttachmentState)
	assert.Equal(t, "attached", *vgw.AttachmentState)
}

func TestFetchCustomerGateways_Unfiltered(t *testing.T) {
	q := newFakeQuery("vpc-1")
	q.customerGateways = func(in *ec2.DescribeCustomerGatewaysInput) (*ec2.DescribeCustomerGatewaysOutput, error) {
		assert.Empty(t, in.Filters)
		return &ec2.DescribeCustomerGatewaysOutput{
			CustomerGateways: []ec2types.CustomerGateway{{
				CustomerGatewayId: aws.String("cgw-1"),
				IpAddress:         aws.String("203.0.113.1"),
				BgpAsn:            aws.String("65000"),
				State:             aws.String("available"),
			}},
		}, nil
	}

	data, err := FetchCustomerGateways(context.Background(), q, "vpc-1")
	require.NoError(t, err)

	require.Len(t, data.CustomerGateways, 1)
	cgw := data.CustomerGateways[0]
	assert.Equal(t, "cgw-1", cgw.CustomerGatewayID)
	assert.Equal(t, "ipsec.1", cgw.Type)
}
