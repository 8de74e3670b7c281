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

// ENIAttachment describes what a network interface is attached to.
type ENIAttachment struct {
	AttachmentID        *string    `json:"attachment_id" yaml:"attachment_id"`
	InstanceID          *string    `json:"instance_id" yaml:"instance_id"`
	InstanceOwnerID     *string    `json:"instance_owner_id" yaml:"instance_owner_id"`
	DeviceIndex         *int32     `json:"device_index" yaml:"device_index"`
	Status              string     `json:"status" yaml:"status"`
	AttachTime          *time.Time `json:"attach_time" yaml:"attach_time"`
	DeleteOnTermination bool       `json:"delete_on_termination" yaml:"delete_on_termination"`
	NetworkCardIndex    *int32     `json:"network_card_index" yaml:"network_card_index"`
}

// ENIAssociation is the public IP association of a network interface.
type ENIAssociation struct {
	PublicIP      *string `json:"public_ip" yaml:"public_ip"`
	PublicDNSName *string `json:"public_dns_name" yaml:"public_dns_name"`
	AllocationID  *string `json:"allocation_id" yaml:"allocation_id"`
	AssociationID *string `json:"association_id" yaml:"association_id"`
	IPOwnerID     *string `json:"ip_owner_id" yaml:"ip_owner_id"`
	CarrierIP     *string `json:"carrier_ip" yaml:"carrier_ip"`
}

// ENIPrivateIP is one private IPv4 address bound to a network interface.
type ENIPrivateIP struct {
	PrivateIPAddress *string         `json:"private_ip_address" yaml:"private_ip_address"`
	PrivateDNSName   *string         `json:"private_dns_name" yaml:"private_dns_name"`
	Primary          bool            `json:"primary" yaml:"primary"`
	Association      *ENIAssociation `json:"association" yaml:"association"`
}

// ENIIPv6Address is one IPv6 address bound to a network interface.
type ENIIPv6Address struct {
	IPv6Address   *string `json:"ipv6_address" yaml:"ipv6_address"`
	IsPrimaryIPv6 bool    `json:"is_primary_ipv6" yaml:"is_primary_ipv6"`
}

// NetworkInterface is the normalized record for one ENI. The
// owner_description field classifies AWS-managed interfaces by type so a
// report reader can tell what service put the ENI in the VPC.
type NetworkInterface struct {
	NetworkInterfaceID string  `json:"network_interface_id" yaml:"network_interface_id"`
	SubnetID           *string `json:"subnet_id" yaml:"subnet_id"`
	VPCID              *string `json:"vpc_id" yaml:"vpc_id"`
	AvailabilityZone   *string `json:"availability_zone" yaml:"availability_zone"`
	Description        *string `json:"description" yaml:"description"`
	OwnerID            *string `json:"owner_id" yaml:"owner_id"`
	RequesterID        *string `json:"requester_id" yaml:"requester_id"`
	RequesterManaged   bool    `json:"requester_managed" yaml:"requester_managed"`
	Status             string  `json:"status" yaml:"status"`
	InterfaceType      string  `json:"interface_type" yaml:"interface_type"`
	OwnerDescription   string  `json:"owner_description" yaml:"owner_description"`

	MACAddress       *string `json:"mac_address" yaml:"mac_address"`
	PrivateIPAddress *string `json:"private_ip_address" yaml:"private_ip_address"`
	PrivateDNSName   *string `json:"private_dns_name" yaml:"private_dns_name"`
	SourceDestCheck  bool    `json:"source_dest_check" yaml:"source_dest_check"`

	SecurityGroups     []SecurityGroupRef `json:"security_groups" yaml:"security_groups"`
	SecurityGroupCount int                `json:"security_group_count" yaml:"security_group_count"`

	Attachment *ENIAttachment `json:"attachment" yaml:"attachment"`
	AttachedTo *string        `json:"attached_to" yaml:"attached_to"`
	IsAttached bool           `json:"is_attached" yaml:"is_attached"`

	Association *ENIAssociation `json:"association" yaml:"association"`
	HasPublicIP bool            `json:"has_public_ip" yaml:"has_public_ip"`
	PublicIP    *string         `json:"public_ip" yaml:"public_ip"`

	PrivateIPAddresses []ENIPrivateIP   `json:"private_ip_addresses" yaml:"private_ip_addresses"`
	PrivateIPCount     int              `json:"private_ip_count" yaml:"private_ip_count"`
	IPv6Addresses      []ENIIPv6Address `json:"ipv6_addresses" yaml:"ipv6_addresses"`
	IPv6AddressCount   int              `json:"ipv6_address_count" yaml:"ipv6_address_count"`
	IPv4Prefixes       []string         `json:"ipv4_prefixes" yaml:"ipv4_prefixes"`
	IPv6Prefixes       []string         `json:"ipv6_prefixes" yaml:"ipv6_prefixes"`

	IPv6Native        bool    `json:"ipv6_native" yaml:"ipv6_native"`
	OutpostARN        *string `json:"outpost_arn" yaml:"outpost_arn"`
	DenyAllIGWTraffic bool    `json:"deny_all_igw_traffic" yaml:"deny_all_igw_traffic"`

	Tags []Tag   `json:"tags" yaml:"tags"`
	Name *string `json:"name" yaml:"name"`
}

// NetworkInterfacesData is the "network_interfaces" section payload.
type NetworkInterfacesData struct {
	TotalCount          int                         `json:"total_count" yaml:"total_count"`
	InterfaceTypeCounts map[string]int              `json:"interface_type_counts" yaml:"interface_type_counts"`
	AWSManagedCount     int                         `json:"aws_managed_count" yaml:"aws_managed_count"`
	UserManagedCount    int                         `json:"user_managed_count" yaml:"user_managed_count"`
	NetworkInterfaces   []NetworkInterface          `json:"network_interfaces" yaml:"network_interfaces"`
	Raw                 []ec2types.NetworkInterface `json:"raw_data" yaml:"raw_data"`
}

func (*NetworkInterfacesData) sectionData() {}

// FetchNetworkInterfaces collects all ENIs in the VPC.
func FetchNetworkInterfaces(ctx context.Context, q QueryService, vpcID string) (*NetworkInterfacesData, error) {
	out, err := q.DescribeNetworkInterfaces(ctx, &ec2.DescribeNetworkInterfacesInput{
		Filters: vpcFilter(vpcID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe network interfaces: %w", err)
	}

	interfaces := make([]NetworkInterface, 0, len(out.NetworkInterfaces))
	typeCounts := make(map[string]int)
	var awsManaged, userManaged int
	for _, eni := range out.NetworkInterfaces {
		rec := normalizeNetworkInterface(eni)
		typeCounts[rec.InterfaceType]++
		if rec.RequesterManaged {
			awsManaged++
		} else {
			userManaged++
		}
		interfaces = append(interfaces, rec)
	}

	log.Debug().Str("vpc_id", vpcID).Int("count", len(interfaces)).Msg("collected network interfaces")

	return &NetworkInterfacesData{
		TotalCount:          len(interfaces),
		InterfaceTypeCounts: typeCounts,
		AWSManagedCount:     awsManaged,
		UserManagedCount:    userManaged,
		NetworkInterfaces:   interfaces,
		Raw:                 out.NetworkInterfaces,
	}, nil
}

func normalizeNetworkInterface(eni ec2types.NetworkInterface) NetworkInterface {
	groups := make([]SecurityGroupRef, 0, len(eni.Groups))
	for _, sg := range eni.Groups {
		groups = append(groups, SecurityGroupRef{
			GroupID:   aws.ToString(sg.GroupId),
			GroupName: aws.ToString(sg.GroupName),
		})
	}

	var attachment *ENIAttachment
	if att := eni.Attachment; att != nil {
		attachment = &ENIAttachment{
			AttachmentID:        att.AttachmentId,
			InstanceID:          att.InstanceId,
			InstanceOwnerID:     att.InstanceOwnerId,
			DeviceIndex:         att.DeviceIndex,
			Status:              string(att.Status),
			AttachTime:          att.AttachTime,
			DeleteOnTermination: aws.ToBool(att.DeleteOnTermination),
			NetworkCardIndex:    att.NetworkCardIndex,
		}
	}

	var association *ENIAssociation
	if assoc := eni.Association; assoc != nil {
		association = newENIAssociation(assoc)
	}

	privateIPs := make([]ENIPrivateIP, 0, len(eni.PrivateIpAddresses))
	for _, ip := range eni.PrivateIpAddresses {
		entry := ENIPrivateIP{
			PrivateIPAddress: ip.PrivateIpAddress,
			PrivateDNSName:   ip.PrivateDnsName,
			Primary:          aws.ToBool(ip.Primary),
		}
		if ip.Association != nil {
			entry.Association = newENIAssociation(ip.Association)
		}
		privateIPs = append(privateIPs, entry)
	}

	ipv6Addresses := make([]ENIIPv6Address, 0, len(eni.Ipv6Addresses))
	for _, ipv6 := range eni.Ipv6Addresses {
		ipv6Addresses = append(ipv6Addresses, ENIIPv6Address{
			IPv6Address:   ipv6.Ipv6Address,
			IsPrimaryIPv6: aws.ToBool(ipv6.IsPrimaryIpv6),
		})
	}

	ipv4Prefixes := make([]string, 0, len(eni.Ipv4Prefixes))
	for _, prefix := range eni.Ipv4Prefixes {
		ipv4Prefixes = append(ipv4Prefixes, aws.ToString(prefix.Ipv4Prefix))
	}
	ipv6Prefixes := make([]string, 0, len(eni.Ipv6Prefixes))
	for _, prefix := range eni.Ipv6Prefixes {
		ipv6Prefixes = append(ipv6Prefixes, aws.ToString(prefix.Ipv6Prefix))
	}

	interfaceType := string(eni.InterfaceType)
	if interfaceType == "" {
		interfaceType = "interface"
	}
	requesterManaged := aws.ToBool(eni.RequesterManaged)

	rec := NetworkInterface{
		NetworkInterfaceID: aws.ToString(eni.NetworkInterfaceId),
		SubnetID:           eni.SubnetId,
		VPCID:              eni.VpcId,
		AvailabilityZone:   eni.AvailabilityZone,
		Description:        eni.Description,
		OwnerID:            eni.OwnerId,
		RequesterID:        eni.RequesterId,
		RequesterManaged:   requesterManaged,
		Status:             string(eni.Status),
		InterfaceType:      interfaceType,
		OwnerDescription:   eniOwnerDescription(interfaceType, requesterManaged, eni.RequesterId, attachment),
		MACAddress:         eni.MacAddress,
		PrivateIPAddress:   eni.PrivateIpAddress,
		PrivateDNSName:     eni.PrivateDnsName,
		SourceDestCheck:    sourceDestCheck(eni.SourceDestCheck),
		SecurityGroups:     groups,
		SecurityGroupCount: len(groups),
		Attachment:         attachment,
		IsAttached:         attachment != nil,
		Association:        association,
		PrivateIPAddresses: privateIPs,
		PrivateIPCount:     len(privateIPs),
		IPv6Addresses:      ipv6Addresses,
		IPv6AddressCount:   len(ipv6Addresses),
		IPv4Prefixes:       ipv4Prefixes,
		IPv6Prefixes:       ipv6Prefixes,
		IPv6Native:         aws.ToBool(eni.Ipv6Native),
		OutpostARN:         eni.OutpostArn,
		DenyAllIGWTraffic:  aws.ToBool(eni.DenyAllIgwTraffic),
		Tags:               convertTags(eni.TagSet),
		Name:               nameFromTags(eni.TagSet),
	}
	if attachment != nil {
		rec.AttachedTo = attachment.InstanceID
	}
	if association != nil && association.PublicIP != nil {
		rec.HasPublicIP = true
		rec.PublicIP = association.PublicIP
	}
	return rec
}

func newENIAssociation(assoc *ec2types.NetworkInterfaceAssociation) *ENIAssociation {
	return &ENIAssociation{
		PublicIP:      assoc.PublicIp,
		PublicDNSName: assoc.PublicDnsName,
		AllocationID:  assoc.AllocationId,
		AssociationID: assoc.AssociationId,
		IPOwnerID:     assoc.IpOwnerId,
		CarrierIP:     assoc.CarrierIp,
	}
}

func sourceDestCheck(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}

// Keyed on the DescribeNetworkInterfaces wire values. Note the camelCase
// outlier "natGateway". Types without an SDK constant yet are spelled out.
var eniOwnerByType = map[string]string{
	string(ec2types.NetworkInterfaceTypeNatGateway):                    "NAT Gateway",
	string(ec2types.NetworkInterfaceTypeVpcEndpoint):                   "VPC Endpoint",
	string(ec2types.NetworkInterfaceTypeLambda):                        "Lambda Function",
	string(ec2types.NetworkInterfaceTypeNetworkLoadBalancer):           "Network Load Balancer",
	string(ec2types.NetworkInterfaceTypeGatewayLoadBalancer):           "Gateway Load Balancer",
	string(ec2types.NetworkInterfaceTypeGatewayLoadBalancerEndpoint):   "Gateway Load Balancer Endpoint",
	string(ec2types.NetworkInterfaceTypeTransitGateway):                "Transit Gateway",
	string(ec2types.NetworkInterfaceTypeEfa):                           "Elastic Fabric Adapter",
	string(ec2types.NetworkInterfaceTypeLoadBalancer):                  "Classic Load Balancer",
	string(ec2types.NetworkInterfaceTypeQuicksight):                    "QuickSight",
	string(ec2types.NetworkInterfaceTypeGlobalAcceleratorManaged):      "Global Accelerator",
	string(ec2types.NetworkInterfaceTypeApiGatewayManaged):             "API Gateway",
	string(ec2types.NetworkInterfaceTypeAwsCodestarConnectionsManaged): "CodeStar Connections",
	string(ec2types.NetworkInterfaceTypeIotRulesManaged):               "IoT Rules",
	string(ec2types.NetworkInterfaceTypeTrunk):                         "Trunk ENI",
	string(ec2types.NetworkInterfaceTypeBranch):                        "Branch ENI",
	"efs":                           "EFS Mount Target",
	"ec2_instance_connect_endpoint": "EC2 Instance Connect Endpoint",
}

func eniOwnerDescription(interfaceType string, requesterManaged bool, requesterID *string, attachment *ENIAttachment) string {
	if desc, ok := eniOwnerByType[interfaceType]; ok {
		return desc
	}
	if requesterManaged && requesterID != nil {
		return fmt.Sprintf("AWS Service (%s)", *requesterID)
	}
	if attachment != nil && attachment.InstanceID != nil {
		return fmt.Sprintf("EC2 Instance (%s)", *attachment.InstanceID)
	}
	if interfaceType == "interface" {
		return "Standard ENI"
	}
	return fmt.Sprintf("Unknown (%s)", interfaceType)
}
