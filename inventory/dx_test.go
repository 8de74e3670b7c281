package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/directconnect"
	dctypes "github.com/aws/aws-sdk-go-v2/service/directconnect/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchDirectConnectVIFs_ErrorBecomesEmptyPayload(t *testing.T) {
	q := newFakeQuery("vpc-1")
	q.virtualInterfaces = func(*directconnect.DescribeVirtualInterfacesInput) (*directconnect.DescribeVirtualInterfacesOutput, error) {
		return nil, errors.New("AccessDeniedException: not subscribed")
	}

	data, err := FetchDirectConnectVIFs(context.Background(), q, "vpc-1")
	require.NoError(t, err)

	assert.Equal(t, 0, data.TotalCount)
	assert.Empty(t, data.VirtualInterfaces)
	assert.Contains(t, data.Error, "AccessDeniedException")
}

func TestNormalizeVirtualInterface_BGPSummary(t *testing.T) {
	vif := dctypes.VirtualInterface{
		VirtualInterfaceId:    aws.String("dxvif-1"),
		Vlan:                  101,
		Asn:                   65001,
		VirtualInterfaceState: dctypes.VirtualInterfaceStateAvailable,
		BgpPeers: []dctypes.BGPPeer{
			{BgpStatus: dctypes.BGPStatusUp},
			{BgpStatus: dctypes.BGPStatusUp},
			{BgpStatus: dctypes.BGPStatusDown},
		},
	}

	rec := normalizeVirtualInterface(vif)

	assert.Equal(t, int32(101), rec.VLAN)
	assert.Equal(t, int32(65001), rec.ASN)
	assert.Equal(t, 3, rec.BGPPeerCount)
	assert.Equal(t, 2, rec.BGPSessionsUp)
	assert.Equal(t, 1, rec.BGPSessionsDown)
	assert.False(t, rec.AllBGPSessionsUp)
}

func TestNormalizeVirtualInterface_NoPeersIsNotUp(t *testing.T) {
	rec := normalizeVirtualInterface(dctypes.VirtualInterface{
		VirtualInterfaceId: aws.String("dxvif-2"),
	})
	assert.False(t, rec.AllBGPSessionsUp)
	assert.Equal(t, map[string]int{"up": 0, "down": 0, "unknown": 0}, rec.BGPStatusSummary)
}
