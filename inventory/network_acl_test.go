package inventory

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func naclEntry(ruleNumber int32, egress bool) ec2types.NetworkAclEntry {
	return ec2types.NetworkAclEntry{
		RuleNumber: aws.Int32(ruleNumber),
		Egress:     aws.Bool(egress),
		Protocol:   aws.String("6"),
		RuleAction: ec2types.RuleActionAllow,
		CidrBlock:  aws.String("0.0.0.0/0"),
	}
}

func TestParseACLEntries_SortedByRuleNumber(t *testing.T) {
	rules := parseACLEntries([]ec2types.NetworkAclEntry{
		naclEntry(200, false),
		naclEntry(100, false),
		naclEntry(150, false),
	})

	require.Len(t, rules, 3)
	assert.Equal(t, int32(100), rules[0].RuleNumber)
	assert.Equal(t, int32(150), rules[1].RuleNumber)
	assert.Equal(t, int32(200), rules[2].RuleNumber)
}

func TestParseACLEntries_Normalization(t *testing.T) {
	icmp := ec2types.NetworkAclEntry{
		RuleNumber: aws.Int32(50),
		Protocol:   aws.String("1"),
		RuleAction: ec2types.RuleActionDeny,
		CidrBlock:  aws.String("10.0.0.0/8"),
		IcmpTypeCode: &ec2types.IcmpTypeCode{
			Type: aws.Int32(8),
			Code: aws.Int32(0),
		},
	}
	tcp := ec2types.NetworkAclEntry{
		RuleNumber: aws.Int32(100),
		Protocol:   aws.String("6"),
		RuleAction: ec2types.RuleActionAllow,
		CidrBlock:  aws.String("0.0.0.0/0"),
		PortRange: &ec2types.PortRange{
			From: aws.Int32(443),
			To:   aws.Int32(443),
		},
	}

	rules := parseACLEntries([]ec2types.NetworkAclEntry{tcp, icmp})
	require.Len(t, rules, 2)

	assert.Equal(t, "ICMP", rules[0].Protocol)
	assert.Equal(t, "1", rules[0].ProtocolNumber)
	assert.Equal(t, "DENY", rules[0].RuleAction)
	assert.Equal(t, "Type: 8, Code: 0", rules[0].ICMPInfo)
	assert.Equal(t, "All", rules[0].PortRange)

	assert.Equal(t, "TCP", rules[1].Protocol)
	assert.Equal(t, "ALLOW", rules[1].RuleAction)
	assert.Equal(t, "443", rules[1].PortRange)
}

func TestNormalizeNetworkACL_SplitsDirections(t *testing.T) {
	nacl := ec2types.NetworkAcl{
		NetworkAclId: aws.String("acl-1"),
		VpcId:        aws.String("vpc-1"),
		IsDefault:    aws.Bool(true),
		Entries: []ec2types.NetworkAclEntry{
			naclEntry(100, false),
			naclEntry(100, true),
			naclEntry(32767, true),
		},
		Associations: []ec2types.NetworkAclAssociation{{
			NetworkAclAssociationId: aws.String("aclassoc-1"),
			SubnetId:                aws.String("subnet-1"),
		}},
	}

	rec := normalizeNetworkACL(nacl)
	assert.Equal(t, 1, rec.InboundRulesCount)
	assert.Equal(t, 2, rec.OutboundRulesCount)
	assert.Equal(t, 1, rec.AssociatedSubnetCount)
	assert.True(t, rec.IsDefault)
	assert.Nil(t, rec.Name)
}
