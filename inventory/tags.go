package inventory

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	dctypes "github.com/aws/aws-sdk-go-v2/service/directconnect/types"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// nameFromTags returns the value of the "Name" tag, or nil when absent.
func nameFromTags(tags []ec2types.Tag) *string {
	for _, tag := range tags {
		if aws.ToString(tag.Key) == "Name" {
			return tag.Value
		}
	}
	return nil
}

// nameFromDXTags is the Direct Connect flavor of nameFromTags. Direct Connect
// carries its own tag type (lowercase key/value on the wire, unlike EC2).
func nameFromDXTags(tags []dctypes.Tag) *string {
	for _, tag := range tags {
		if aws.ToString(tag.Key) == "Name" {
			return tag.Value
		}
	}
	return nil
}

// Tag is the report-facing tag shape shared by every EC2-backed section.
type Tag struct {
	Key   string `json:"Key" yaml:"Key"`
	Value string `json:"Value" yaml:"Value"`
}

func convertTags(tags []ec2types.Tag) []Tag {
	out := make([]Tag, 0, len(tags))
	for _, tag := range tags {
		out = append(out, Tag{Key: aws.ToString(tag.Key), Value: aws.ToString(tag.Value)})
	}
	return out
}

func convertDXTags(tags []dctypes.Tag) []Tag {
	out := make([]Tag, 0, len(tags))
	for _, tag := range tags {
		out = append(out, Tag{Key: aws.ToString(tag.Key), Value: aws.ToString(tag.Value)})
	}
	return out
}

// protocolName translates an IP protocol number into its friendly name.
// Unknown codes come back unchanged (security group behavior).
func protocolName(protocol string) string {
	switch protocol {
	case "-1":
		return "All"
	case "1":
		return "ICMP"
	case "6":
		return "TCP"
	case "17":
		return "UDP"
	case "58":
		return "ICMPv6"
	}
	return protocol
}

// naclProtocolName is the network ACL flavor: unknown codes render as
// "Protocol <code>". The two fallbacks differ historically and both shapes
// are load-bearing for report consumers.
func naclProtocolName(protocol string) string {
	switch protocol {
	case "-1", "1", "6", "17", "58":
		return protocolName(protocol)
	}
	return "Protocol " + protocol
}
