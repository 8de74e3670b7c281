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

// PeerVPCInfo describes one side of a peering connection.
type PeerVPCInfo struct {
	VPCID          string   `json:"vpc_id" yaml:"vpc_id"`
	OwnerID        string   `json:"owner_id" yaml:"owner_id"`
	CIDRBlock      string   `json:"cidr_block" yaml:"cidr_block"`
	Region         string   `json:"region" yaml:"region"`
	IPv6CIDRBlocks []string `json:"ipv6_cidr_blocks" yaml:"ipv6_cidr_blocks"`
	CIDRBlocks     []string `json:"cidr_blocks" yaml:"cidr_blocks"`
}

// PeeringConnection is the normalized record for one VPC peering connection.
type PeeringConnection struct {
	VPCPeeringConnectionID string      `json:"vpc_peering_connection_id" yaml:"vpc_peering_connection_id"`
	StatusCode             string      `json:"status_code" yaml:"status_code"`
	StatusMessage          string      `json:"status_message" yaml:"status_message"`
	ExpirationTime         *time.Time  `json:"expiration_time" yaml:"expiration_time"`
	RequesterVPC           PeerVPCInfo `json:"requester_vpc" yaml:"requester_vpc"`
	AccepterVPC            PeerVPCInfo `json:"accepter_vpc" yaml:"accepter_vpc"`
	Role                   string      `json:"role" yaml:"role"`
	PeerVPC                PeerVPCInfo `json:"peer_vpc" yaml:"peer_vpc"`
	IsCrossAccount         bool        `json:"is_cross_account" yaml:"is_cross_account"`
	IsCrossRegion          bool        `json:"is_cross_region" yaml:"is_cross_region"`
	Tags                   []Tag       `json:"tags" yaml:"tags"`
	Name                   *string     `json:"name" yaml:"name"`
}

// PeeringData is the "vpc_peering" section payload.
type PeeringData struct {
	TotalCount         int                             `json:"total_count" yaml:"total_count"`
	CrossAccountCount  int                             `json:"cross_account_count" yaml:"cross_account_count"`
	CrossRegionCount   int                             `json:"cross_region_count" yaml:"cross_region_count"`
	PeeringConnections []PeeringConnection             `json:"peering_connections" yaml:"peering_connections"`
	Raw                []ec2types.VpcPeeringConnection `json:"raw_data" yaml:"raw_data"`
}

func (*PeeringData) sectionData() {}

// FetchPeeringConnections collects peering connections where the VPC is
// either requester or accepter. The two query results are merged by
// connection ID with the accepter-query result winning on collision;
// requester-query insertion order is preserved and accepter-only connections
// append after it.
func FetchPeeringConnections(ctx context.Context, q QueryService, vpcID string) (*PeeringData, error) {
	asRequester, err := q.DescribeVpcPeeringConnections(ctx, &ec2.DescribeVpcPeeringConnectionsInput{
		Filters: []ec2types.Filter{{
			Name:   aws.String("requester-vpc-info.vpc-id"),
			Values: []string{vpcID},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe peering connections (requester): %w", err)
	}

	asAccepter, err := q.DescribeVpcPeeringConnections(ctx, &ec2.DescribeVpcPeeringConnectionsInput{
		Filters: []ec2types.Filter{{
			Name:   aws.String("accepter-vpc-info.vpc-id"),
			Values: []string{vpcID},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe peering connections (accepter): %w", err)
	}

	merged := mergePeeringConnections(asRequester.VpcPeeringConnections, asAccepter.VpcPeeringConnections)

	connections := make([]PeeringConnection, 0, len(merged))
	var crossAccount, crossRegion int
	for _, peering := range merged {
		rec := normalizePeering(peering, vpcID)
		if rec.IsCrossAccount {
			crossAccount++
		}
		if rec.IsCrossRegion {
			crossRegion++
		}
		connections = append(connections, rec)
	}

	log.Debug().Str("vpc_id", vpcID).Int("count", len(connections)).Msg("collected peering connections")

	return &PeeringData{
		TotalCount:         len(connections),
		CrossAccountCount:  crossAccount,
		CrossRegionCount:   crossRegion,
		PeeringConnections: connections,
		Raw:                merged,
	}, nil
}

func mergePeeringConnections(requester, accepter []ec2types.VpcPeeringConnection) []ec2types.VpcPeeringConnection {
	merged := make([]ec2types.VpcPeeringConnection, 0, len(requester)+len(accepter))
	index := make(map[string]int, len(requester))

	for _, conn := range requester {
		index[aws.ToString(conn.VpcPeeringConnectionId)] = len(merged)
		merged = append(merged, conn)
	}
	for _, conn := range accepter {
		id := aws.ToString(conn.VpcPeeringConnectionId)
		if i, seen := index[id]; seen {
			merged[i] = conn
			continue
		}
		index[id] = len(merged)
		merged = append(merged, conn)
	}
	return merged
}

func normalizePeering(peering ec2types.VpcPeeringConnection, vpcID string) PeeringConnection {
	requesterVPC := normalizePeerInfo(peering.RequesterVpcInfo)
	accepterVPC := normalizePeerInfo(peering.AccepterVpcInfo)

	role := "accepter"
	peerVPC := requesterVPC
	if requesterVPC.VPCID == vpcID {
		role = "requester"
		peerVPC = accepterVPC
	}

	rec := PeeringConnection{
		VPCPeeringConnectionID: aws.ToString(peering.VpcPeeringConnectionId),
		ExpirationTime:         peering.ExpirationTime,
		RequesterVPC:           requesterVPC,
		AccepterVPC:            accepterVPC,
		Role:                   role,
		PeerVPC:                peerVPC,
		IsCrossAccount:         requesterVPC.OwnerID != accepterVPC.OwnerID,
		IsCrossRegion:          requesterVPC.Region != accepterVPC.Region,
		Tags:                   convertTags(peering.Tags),
		Name:                   nameFromTags(peering.Tags),
	}
	if peering.Status != nil {
		rec.StatusCode = string(peering.Status.Code)
		rec.StatusMessage = aws.ToString(peering.Status.Message)
	}
	return rec
}

func normalizePeerInfo(info *ec2types.VpcPeeringConnectionVpcInfo) PeerVPCInfo {
	if info == nil {
		return PeerVPCInfo{IPv6CIDRBlocks: []string{}, CIDRBlocks: []string{}}
	}

	ipv6Blocks := make([]string, 0, len(info.Ipv6CidrBlockSet))
	for _, block := range info.Ipv6CidrBlockSet {
		ipv6Blocks = append(ipv6Blocks, aws.ToString(block.Ipv6CidrBlock))
	}
	cidrBlocks := make([]string, 0, len(info.CidrBlockSet))
	for _, block := range info.CidrBlockSet {
		cidrBlocks = append(cidrBlocks, aws.ToString(block.CidrBlock))
	}

	return PeerVPCInfo{
		VPCID:          aws.ToString(info.VpcId),
		OwnerID:        aws.ToString(info.OwnerId),
		CIDRBlock:      aws.ToString(info.CidrBlock),
		Region:         aws.ToString(info.Region),
		IPv6CIDRBlocks: ipv6Blocks,
		CIDRBlocks:     cidrBlocks,
	}
}
