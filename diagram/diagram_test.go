package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netscribe/vpcrecon/inventory"
)

func topologyResult() *inventory.CollectionResult {
	return &inventory.CollectionResult{
		VPCID:  "vpc-topo",
		Region: "us-east-1",
		Sections: map[string]inventory.SectionResult{
			inventory.SectionVPC: {
				Success: true,
				Data: &inventory.VPCDetails{
					VPCID:     "vpc-topo",
					CIDRBlock: "10.0.0.0/16",
				},
			},
			inventory.SectionSubnets: {
				Success: true,
				Data: &inventory.SubnetsData{
					TotalCount: 2,
					Subnets: []inventory.Subnet{
						{SubnetID: "subnet-pub", CIDRBlock: "10.0.1.0/24", AvailabilityZone: "us-east-1a", MapPublicIP: true},
						{SubnetID: "subnet-priv", CIDRBlock: "10.0.2.0/24", AvailabilityZone: "us-east-1b"},
					},
				},
			},
			inventory.SectionInternetGateways: {
				Success: true,
				Data: &inventory.InternetGatewaysData{
					TotalCount:       1,
					InternetGateways: []inventory.InternetGateway{{InternetGatewayID: "igw-1"}},
				},
			},
			inventory.SectionNATGateways: {
				Success: true,
				Data: &inventory.NATGatewaysData{
					TotalCount:  1,
					NATGateways: []inventory.NATGateway{{NATGatewayID: "nat-1", SubnetID: "subnet-pub"}},
				},
			},
			inventory.SectionVPCPeering: {
				Success: true,
				Data: &inventory.PeeringData{
					TotalCount: 1,
					PeeringConnections: []inventory.PeeringConnection{{
						VPCPeeringConnectionID: "pcx-1",
						PeerVPC:                inventory.PeerVPCInfo{VPCID: "vpc-peer", CIDRBlock: "172.16.0.0/16"},
					}},
				},
			},
		},
	}
}

func TestGenerate_DOTTopology(t *testing.T) {
	gen := &Generator{}
	out, err := gen.GenerateString(topologyResult())
	require.NoError(t, err)

	assert.Contains(t, out, "digraph")
	assert.Contains(t, out, "subgraph cluster_")
	assert.Contains(t, out, `vpc-topo\n10.0.0.0/16`)
	assert.Contains(t, out, "subnet-pub")
	assert.Contains(t, out, "subnet-priv")
	assert.Contains(t, out, "igw-1")
	assert.Contains(t, out, "nat-1")
	assert.Contains(t, out, "vpc-peer")
	assert.Contains(t, out, "pcx-1")
}

func TestGenerate_FailedSectionsSkipped(t *testing.T) {
	result := topologyResult()
	result.Sections[inventory.SectionSubnets] = inventory.SectionResult{
		Success: false,
		Error:   "denied",
	}

	gen := &Generator{}
	out, err := gen.GenerateString(result)
	require.NoError(t, err)

	assert.NotContains(t, out, "subnet-pub")
	assert.Contains(t, out, "igw-1")
	// NAT gateway still renders, anchored to the VPC itself.
	assert.Contains(t, out, "nat-1")
	assert.Contains(t, out, "vpc-topo")
}

func TestGenerate_MinimalResult(t *testing.T) {
	gen := &Generator{}
	out, err := gen.GenerateString(&inventory.CollectionResult{
		VPCID:    "vpc-empty",
		Region:   "us-east-1",
		Sections: map[string]inventory.SectionResult{},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "digraph")
}
