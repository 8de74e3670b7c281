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

// TGWAttachmentOptions carries the VPC attachment feature toggles.
type TGWAttachmentOptions struct {
	DNSSupport                      string `json:"dns_support" yaml:"dns_support"`
	SecurityGroupReferencingSupport string `json:"security_group_referencing_support" yaml:"security_group_referencing_support"`
	IPv6Support                     string `json:"ipv6_support" yaml:"ipv6_support"`
	ApplianceModeSupport            string `json:"appliance_mode_support" yaml:"appliance_mode_support"`
}

// TGWAttachment is the normalized record for one transit gateway VPC attachment.
type TGWAttachment struct {
	TransitGatewayAttachmentID string               `json:"transit_gateway_attachment_id" yaml:"transit_gateway_attachment_id"`
	TransitGatewayID           string               `json:"transit_gateway_id" yaml:"transit_gateway_id"`
	VPCID                      string               `json:"vpc_id" yaml:"vpc_id"`
	VPCOwnerID                 string               `json:"vpc_owner_id" yaml:"vpc_owner_id"`
	State                      string               `json:"state" yaml:"state"`
	SubnetIDs                  []string             `json:"subnet_ids" yaml:"subnet_ids"`
	SubnetCount                int                  `json:"subnet_count" yaml:"subnet_count"`
	CreationTime               *time.Time           `json:"creation_time" yaml:"creation_time"`
	Options                    TGWAttachmentOptions `json:"options" yaml:"options"`
	Tags                       []Tag                `json:"tags" yaml:"tags"`
	Name                       *string              `json:"name" yaml:"name"`
}

// TGWAttachmentsData is the "transit_gateway_attachments" section payload.
type TGWAttachmentsData struct {
	TotalCount  int                                    `json:"total_count" yaml:"total_count"`
	Attachments []TGWAttachment                        `json:"attachments" yaml:"attachments"`
	Raw         []ec2types.TransitGatewayVpcAttachment `json:"raw_data" yaml:"raw_data"`
}

func (*TGWAttachmentsData) sectionData() {}

// FetchTGWAttachments collects transit gateway VPC attachments for the VPC.
func FetchTGWAttachments(ctx context.Context, q QueryService, vpcID string) (*TGWAttachmentsData, error) {
	out, err := q.DescribeTransitGatewayVpcAttachments(ctx, &ec2.DescribeTransitGatewayVpcAttachmentsInput{
		Filters: vpcFilter(vpcID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe transit gateway attachments: %w", err)
	}

	attachments := make([]TGWAttachment, 0, len(out.TransitGatewayVpcAttachments))
	for _, att := range out.TransitGatewayVpcAttachments {
		attachments = append(attachments, normalizeTGWAttachment(att))
	}

	log.Debug().Str("vpc_id", vpcID).Int("count", len(attachments)).Msg("collected transit gateway attachments")

	return &TGWAttachmentsData{
		TotalCount:  len(attachments),
		Attachments: attachments,
		Raw:         out.TransitGatewayVpcAttachments,
	}, nil
}

func normalizeTGWAttachment(att ec2types.TransitGatewayVpcAttachment) TGWAttachment {
	subnets := att.SubnetIds
	if subnets == nil {
		subnets = []string{}
	}

	options := TGWAttachmentOptions{
		DNSSupport:                      "enable",
		SecurityGroupReferencingSupport: "enable",
		IPv6Support:                     "disable",
		ApplianceModeSupport:            "disable",
	}
	if att.Options != nil {
		if att.Options.DnsSupport != "" {
			options.DNSSupport = string(att.Options.DnsSupport)
		}
		if att.Options.SecurityGroupReferencingSupport != "" {
			options.SecurityGroupReferencingSupport = string(att.Options.SecurityGroupReferencingSupport)
		}
		if att.Options.Ipv6Support != "" {
			options.IPv6Support = string(att.Options.Ipv6Support)
		}
		if att.Options.ApplianceModeSupport != "" {
			options.ApplianceModeSupport = string(att.Options.ApplianceModeSupport)
		}
	}

	return TGWAttachment{
		TransitGatewayAttachmentID: aws.ToString(att.TransitGatewayAttachmentId),
		TransitGatewayID:           aws.ToString(att.TransitGatewayId),
		VPCID:                      aws.ToString(att.VpcId),
		VPCOwnerID:                 aws.ToString(att.VpcOwnerId),
		State:                      string(att.State),
		SubnetIDs:                  subnets,
		SubnetCount:                len(subnets),
		CreationTime:               att.CreationTime,
		Options:                    options,
		Tags:                       convertTags(att.Tags),
		Name:                       nameFromTags(att.Tags),
	}
}
