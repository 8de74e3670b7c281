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

func peeringConn(id, requesterVPC, accepterVPC, statusCode string) ec2types.VpcPeeringConnection {
	return ec2types.VpcPeeringConnection{
		VpcPeeringConnectionId: aws.String(id),
		Status: &ec2types.VpcPeeringConnectionStateReason{
			Code: ec2types.VpcPeeringConnectionStateReasonCode(statusCode),
		},
		RequesterVpcInfo: &ec2types.VpcPeeringConnectionVpcInfo{
			VpcId:   aws.String(requesterVPC),
			OwnerId: aws.String("111122223333"),
			Region:  aws.String("us-east-1"),
		},
		AccepterVpcInfo: &ec2types.VpcPeeringConnectionVpcInfo{
			VpcId:   aws.String(accepterVPC),
			OwnerId: aws.String("111122223333"),
			Region:  aws.String("us-east-1"),
		},
	}
}

func TestMergePeeringConnections_AccepterWins(t *testing.T) {
	// Same connection returned by both queries with different snapshots.
	fromRequester := []ec2types.VpcPeeringConnection{
		peeringConn("pcx-both", "vpc-a", "vpc-a", "pending-acceptance"),
		peeringConn("pcx-req", "vpc-a", "vpc-b", "active"),
	}
	fromAccepter := []ec2types.VpcPeeringConnection{
		peeringConn("pcx-both", "vpc-a", "vpc-a", "active"),
		peeringConn("pcx-acc", "vpc-c", "vpc-a", "active"),
	}

	merged := mergePeeringConnections(fromRequester, fromAccepter)

	require.Len(t, merged, 3)
	assert.Equal(t, "pcx-both", aws.ToString(merged[0].VpcPeeringConnectionId))
	assert.Equal(t, "pcx-req", aws.ToString(merged[1].VpcPeeringConnectionId))
	assert.Equal(t, "pcx-acc", aws.ToString(merged[2].VpcPeeringConnectionId))

	// The accepter-query snapshot replaced the requester-query one in place.
	assert.Equal(t, ec2types.VpcPeeringConnectionStateReasonCode("active"), merged[0].Status.Code)
}

func TestNormalizePeering_Role(t *testing.T) {
	asRequester := normalizePeering(peeringConn("pcx-1", "vpc-mine", "vpc-other", "active"), "vpc-mine")
	assert.Equal(t, "requester", asRequester.Role)
	assert.Equal(t, "vpc-other", asRequester.PeerVPC.VPCID)

	asAccepter := normalizePeering(peeringConn("pcx-2", "vpc-other", "vpc-mine", "active"), "vpc-mine")
	assert.Equal(t, "accepter", asAccepter.Role)
	assert.Equal(t, "vpc-other", asAccepter.PeerVPC.VPCID)
}

func TestNormalizePeering_CrossAccountAndRegion(t *testing.T) {
	conn := peeringConn("pcx-x", "vpc-mine", "vpc-far", "active")
	conn.AccepterVpcInfo.OwnerId = aws.String("444455556666")
	conn.AccepterVpcInfo.Region = aws.String("eu-west-1")

	rec := normalizePeering(conn, "vpc-mine")
	assert.True(t, rec.IsCrossAccount)
	assert.True(t, rec.IsCrossRegion)
}

func TestNormalizePeerInfo_NilInfo(t *testing.T) {
	info := normalizePeerInfo(nil)
	assert.NotNil(t, info.IPv6CIDRBlocks)
	assert.NotNil(t, info.CIDRBlocks)
	assert.Empty(t, info.VPCID)
}

func TestFetchPeeringConnections_Counts(t *testing.T) {
	q := newFakeQuery("vpc-mine")
	q.peeringConnections = func(in *ec2.DescribeVpcPeeringConnectionsInput) (*ec2.DescribeVpcPeeringConnectionsOutput, error) {
		require.Len(t, in.Filters, 1)
		switch aws.ToString(in.Filters[0].Name) {
		case "requester-vpc-info.vpc-id":
			cross := peeringConn("pcx-cross", "vpc-mine", "vpc-remote", "active")
			cross.AccepterVpcInfo.Region = aws.String("ap-southeast-2")
			return &ec2.DescribeVpcPeeringConnectionsOutput{
				VpcPeeringConnections: []ec2types.VpcPeeringConnection{cross},
			}, nil
		case "accepter-vpc-info.vpc-id":
			return &ec2.DescribeVpcPeeringConnectionsOutput{
				VpcPeeringConnections: []ec2types.VpcPeeringConnection{
					peeringConn("pcx-local", "vpc-other", "vpc-mine", "active"),
				},
			}, nil
		}
		t.Fatalf("unexpected filter %s", aws.ToString(in.Filters[0].Name))
		return nil, nil
	}

	data, err := FetchPeeringConnections(context.Background(), q, "vpc-mine")
	require.NoError(t, err)

	assert.Equal(t, 2, data.TotalCount)
	assert.Equal(t, 0, data.CrossAccountCount)
	assert.Equal(t, 1, data.CrossRegionCount)
}
