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

func TestENIOwnerDescription(t *testing.T) {
	tests := []struct {
		name             string
		interfaceType    string
		requesterManaged bool
		requesterID      *string
		attachment       *ENIAttachment
		want             string
	}{
		{name: "nat gateway wire value", interfaceType: string(ec2types.NetworkInterfaceTypeNatGateway), want: "NAT Gateway"},
		{name: "lambda", interfaceType: "lambda", want: "Lambda Function"},
		{
			name:             "aws service fallback",
			interfaceType:    "interface",
			requesterManaged: true,
			requesterID:      aws.String("amazon-elb"),
			want:             "AWS Service (amazon-elb)",
		},
		{
			name:          "ec2 instance fallback",
			interfaceType: "interface",
			attachment:    &ENIAttachment{InstanceID: aws.String("i-0abc")},
			want:          "EC2 Instance (i-0abc)",
		},
		{name: "standard", interfaceType: "interface", want: "Standard ENI"},
		{name: "unknown type", interfaceType: "mystery", want: "Unknown (mystery)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := eniOwnerDescription(tt.interfaceType, tt.requesterManaged, tt.requesterID, tt.attachment)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSourceDestCheck_NilDefaultsTrue(t *testing.T) {
	assert.True(t, sourceDestCheck(nil))
	assert.True(t, sourceDestCheck(aws.Bool(true)))
	assert.False(t, sourceDestCheck(aws.Bool(false)))
}

func TestNormalizeNetworkInterface_Defaults(t *testing.T) {
	rec := normalizeNetworkInterface(ec2types.NetworkInterface{
		NetworkInterfaceId: aws.String("eni-1"),
	})

	assert.Equal(t, "interface", rec.InterfaceType)
	assert.True(t, rec.SourceDestCheck)
	assert.False(t, rec.IsAttached)
	assert.Equal(t, "Standard ENI", rec.OwnerDescription)
	assert.NotNil(t, rec.SecurityGroups)
	assert.NotNil(t, rec.PrivateIPAddresses)
}

func TestFetchNetworkInterfaces_ManagedCounts(t *testing.T) {
	q := newFakeQuery("vpc-1")
	q.networkInterfaces = func(*ec2.DescribeNetworkInterfacesInput) (*ec2.DescribeNetworkInterfacesOutput, error) {
		return &ec2.DescribeNetworkInterfacesOutput{
			NetworkInterfaces: []ec2types.NetworkInterface{
				{
					NetworkInterfaceId: aws.String("eni-nat"),
					InterfaceType:      ec2types.NetworkInterfaceTypeNatGateway,
					RequesterManaged:   aws.Bool(true),
				},
				{
					NetworkInterfaceId: aws.String("eni-user"),
					InterfaceType:      ec2types.NetworkInterfaceTypeInterface,
				},
			},
		}, nil
	}

	data, err := FetchNetworkInterfaces(context.Background(), q, "vpc-1")
	require.NoError(t, err)

	assert.Equal(t, 2, data.TotalCount)
	assert.Equal(t, 1, data.AWSManagedCount)
	assert.Equal(t, 1, data.UserManagedCount)
	assert.Equal(t, map[string]int{"natGateway": 1, "interface": 1}, data.InterfaceTypeCounts)
	assert.Equal(t, "NAT Gateway", data.NetworkInterfaces[0].OwnerDescription)
}
