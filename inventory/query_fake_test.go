package inventory

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/directconnect"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// fakeQuery implements QueryService with per-method override hooks. The
// zero-value hooks return empty responses, so tests only set what they need.
// Calls are counted under a mutex so concurrent collection tests can assert
// on them safely.
type fakeQuery struct {
	mu    sync.Mutex
	calls map[string]int

	vpcs               func(*ec2.DescribeVpcsInput) (*ec2.DescribeVpcsOutput, error)
	vpcAttribute       func(*ec2.DescribeVpcAttributeInput) (*ec2.DescribeVpcAttributeOutput, error)
	subnets            func(*ec2.DescribeSubnetsInput) (*ec2.DescribeSubnetsOutput, error)
	routeTables        func(*ec2.DescribeRouteTablesInput) (*ec2.DescribeRouteTablesOutput, error)
	securityGroups     func(*ec2.DescribeSecurityGroupsInput) (*ec2.DescribeSecurityGroupsOutput, error)
	networkACLs        func(*ec2.DescribeNetworkAclsInput) (*ec2.DescribeNetworkAclsOutput, error)
	internetGateways   func(*ec2.DescribeInternetGatewaysInput) (*ec2.DescribeInternetGatewaysOutput, error)
	natGateways        func(*ec2.DescribeNatGatewaysInput) (*ec2.DescribeNatGatewaysOutput, error)
	addresses          func(*ec2.DescribeAddressesInput) (*ec2.DescribeAddressesOutput, error)
	vpcEndpoints       func(*ec2.DescribeVpcEndpointsInput) (*ec2.DescribeVpcEndpointsOutput, error)
	peeringConnections func(*ec2.DescribeVpcPeeringConnectionsInput) (*ec2.DescribeVpcPeeringConnectionsOutput, error)
	tgwAttachments     func(*ec2.DescribeTransitGatewayVpcAttachmentsInput) (*ec2.DescribeTransitGatewayVpcAttachmentsOutput, error)
	vpnConnections     func(*ec2.DescribeVpnConnectionsInput) (*ec2.DescribeVpnConnectionsOutput, error)
	customerGateways   func(*ec2.DescribeCustomerGatewaysInput) (*ec2.DescribeCustomerGatewaysOutput, error)
	vpnGateways        func(*ec2.DescribeVpnGatewaysInput) (*ec2.DescribeVpnGatewaysOutput, error)
	dhcpOptions        func(*ec2.DescribeDhcpOptionsInput) (*ec2.DescribeDhcpOptionsOutput, error)
	flowLogs           func(*ec2.DescribeFlowLogsInput) (*ec2.DescribeFlowLogsOutput, error)
	networkInterfaces  func(*ec2.DescribeNetworkInterfacesInput) (*ec2.DescribeNetworkInterfacesOutput, error)
	virtualInterfaces  func(*directconnect.DescribeVirtualInterfacesInput) (*directconnect.DescribeVirtualInterfacesOutput, error)
}

// newFakeQuery returns a fake that knows one VPC and nothing else.
func newFakeQuery(vpcID string) *fakeQuery {
	return &fakeQuery{
		calls: map[string]int{},
		vpcs: func(in *ec2.DescribeVpcsInput) (*ec2.DescribeVpcsOutput, error) {
			return &ec2.DescribeVpcsOutput{
				Vpcs: []ec2types.Vpc{{
					VpcId:           aws.String(vpcID),
					CidrBlock:       aws.String("10.0.0.0/16"),
					State:           ec2types.VpcStateAvailable,
					IsDefault:       aws.Bool(false),
					DhcpOptionsId:   aws.String("dopt-12345"),
					OwnerId:         aws.String("111122223333"),
					InstanceTenancy: ec2types.TenancyDefault,
					Tags: []ec2types.Tag{
						{Key: aws.String("Name"), Value: aws.String("test-vpc")},
					},
				}},
			}, nil
		},
	}
}

func (f *fakeQuery) record(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeQuery) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeQuery) Region() string  { return "us-east-1" }
func (f *fakeQuery) Profile() string { return "test" }

func (f *fakeQuery) DescribeVpcs(ctx context.Context, in *ec2.DescribeVpcsInput) (*ec2.DescribeVpcsOutput, error) {
	f.record("DescribeVpcs")
	if f.vpcs != nil {
		return f.vpcs(in)
	}
	return &ec2.DescribeVpcsOutput{}, nil
}

func (f *fakeQuery) DescribeVpcAttribute(ctx context.Context, in *ec2.DescribeVpcAttributeInput) (*ec2.DescribeVpcAttributeOutput, error) {
	f.record("DescribeVpcAttribute")
	if f.vpcAttribute != nil {
		return f.vpcAttribute(in)
	}
	return &ec2.DescribeVpcAttributeOutput{}, nil
}

func (f *fakeQuery) DescribeSubnets(ctx context.Context, in *ec2.DescribeSubnetsInput) (*ec2.DescribeSubnetsOutput, error) {
	f.record("DescribeSubnets")
	if f.subnets != nil {
		return f.subnets(in)
	}
	return &ec2.DescribeSubnetsOutput{}, nil
}

func (f *fakeQuery) DescribeRouteTables(ctx context.Context, in *ec2.DescribeRouteTablesInput) (*ec2.DescribeRouteTablesOutput, error) {
	f.record("DescribeRouteTables")
	if f.routeTables != nil {
		return f.routeTables(in)
	}
	return &ec2.DescribeRouteTablesOutput{}, nil
}

func (f *fakeQuery) DescribeSecurityGroups(ctx context.Context, in *ec2.DescribeSecurityGroupsInput) (*ec2.DescribeSecurityGroupsOutput, error) {
	f.record("DescribeSecurityGroups")
	if f.securityGroups != nil {
		return f.securityGroups(in)
	}
	return &ec2.DescribeSecurityGroupsOutput{}, nil
}

func (f *fakeQuery) DescribeNetworkAcls(ctx context.Context, in *ec2.DescribeNetworkAclsInput) (*ec2.DescribeNetworkAclsOutput, error) {
	f.record("DescribeNetworkAcls")
	if f.networkACLs != nil {
		return f.networkACLs(in)
	}
	return &ec2.DescribeNetworkAclsOutput{}, nil
}

func (f *fakeQuery) DescribeInternetGateways(ctx context.Context, in *ec2.DescribeInternetGatewaysInput) (*ec2.DescribeInternetGatewaysOutput, error) {
	f.record("DescribeInternetGateways")
	if f.internetGateways != nil {
		return f.internetGateways(in)
	}
	return &ec2.DescribeInternetGatewaysOutput{}, nil
}

func (f *fakeQuery) DescribeNatGateways(ctx context.Context, in *ec2.DescribeNatGatewaysInput) (*ec2.DescribeNatGatewaysOutput, error) {
	f.record("DescribeNatGateways")
	if f.natGateways != nil {
		return f.natGateways(in)
	}
	return &ec2.DescribeNatGatewaysOutput{}, nil
}

func (f *fakeQuery) DescribeAddresses(ctx context.Context, in *ec2.DescribeAddressesInput) (*ec2.DescribeAddressesOutput, error) {
	f.record("DescribeAddresses")
	if f.addresses != nil {
		return f.addresses(in)
	}
	return &ec2.DescribeAddressesOutput{}, nil
}

func (f *fakeQuery) DescribeVpcEndpoints(ctx context.Context, in *ec2.DescribeVpcEndpointsInput) (*ec2.DescribeVpcEndpointsOutput, error) {
	f.record("DescribeVpcEndpoints")
	if f.vpcEndpoints != nil {
		return f.vpcEndpoints(in)
	}
	return &ec2.DescribeVpcEndpointsOutput{}, nil
}

func (f *fakeQuery) DescribeVpcPeeringConnections(ctx context.Context, in *ec2.DescribeVpcPeeringConnectionsInput) (*ec2.DescribeVpcPeeringConnectionsOutput, error) {
	f.record("DescribeVpcPeeringConnections")
	if f.peeringConnections != nil {
		return f.peeringConnections(in)
	}
	return &ec2.DescribeVpcPeeringConnectionsOutput{}, nil
}

func (f *fakeQuery) DescribeTransitGatewayVpcAttachments(ctx context.Context, in *ec2.DescribeTransitGatewayVpcAttachmentsInput) (*ec2.DescribeTransitGatewayVpcAttachmentsOutput, error) {
	f.record("DescribeTransitGatewayVpcAttachments")
	if f.tgwAttachments != nil {
		return f.tgwAttachments(in)
	}
	return &ec2.DescribeTransitGatewayVpcAttachmentsOutput{}, nil
}

func (f *fakeQuery) DescribeVpnConnections(ctx context.Context, in *ec2.DescribeVpnConnectionsInput) (*ec2.DescribeVpnConnectionsOutput, error) {
	f.record("DescribeVpnConnections")
	if f.vpnConnections != nil {
		return f.vpnConnections(in)
	}
	return &ec2.DescribeVpnConnectionsOutput{}, nil
}

func (f *fakeQuery) DescribeCustomerGateways(ctx context.Context, in *ec2.DescribeCustomerGatewaysInput) (*ec2.DescribeCustomerGatewaysOutput, error) {
	f.record("DescribeCustomerGateways")
	if f.customerGateways != nil {
		return f.customerGateways(in)
	}
	return &ec2.DescribeCustomerGatewaysOutput{}, nil
}

func (f *fakeQuery) DescribeVpnGateways(ctx context.Context, in *ec2.DescribeVpnGatewaysInput) (*ec2.DescribeVpnGatewaysOutput, error) {
	f.record("DescribeVpnGateways")
	if f.vpnGateways != nil {
		return f.vpnGateways(in)
	}
	return &ec2.DescribeVpnGatewaysOutput{}, nil
}

func (f *fakeQuery) DescribeDhcpOptions(ctx context.Context, in *ec2.DescribeDhcpOptionsInput) (*ec2.DescribeDhcpOptionsOutput, error) {
	f.record("DescribeDhcpOptions")
	if f.dhcpOptions != nil {
		return f.dhcpOptions(in)
	}
	return &ec2.DescribeDhcpOptionsOutput{}, nil
}

func (f *fakeQuery) DescribeFlowLogs(ctx context.Context, in *ec2.DescribeFlowLogsInput) (*ec2.DescribeFlowLogsOutput, error) {
	f.record("DescribeFlowLogs")
	if f.flowLogs != nil {
		return f.flowLogs(in)
	}
	return &ec2.DescribeFlowLogsOutput{}, nil
}

func (f *fakeQuery) DescribeNetworkInterfaces(ctx context.Context, in *ec2.DescribeNetworkInterfacesInput) (*ec2.DescribeNetworkInterfacesOutput, error) {
	f.record("DescribeNetworkInterfaces")
	if f.networkInterfaces != nil {
		return f.networkInterfaces(in)
	}
	return &ec2.DescribeNetworkInterfacesOutput{}, nil
}

func (f *fakeQuery) DescribeVirtualInterfaces(ctx context.Context, in *directconnect.DescribeVirtualInterfacesInput) (*directconnect.DescribeVirtualInterfacesOutput, error) {
	f.record("DescribeVirtualInterfaces")
	if f.virtualInterfaces != nil {
		return f.virtualInterfaces(in)
	}
	return &directconnect.DescribeVirtualInterfacesOutput{}, nil
}
