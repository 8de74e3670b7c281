package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect_AllSectionsPresent(t *testing.T) {
	q := newFakeQuery("vpc-test123")

	result, err := Collect(context.Background(), q, "vpc-test123", Options{})
	require.NoError(t, err)

	assert.Equal(t, "vpc-test123", result.VPCID)
	assert.Equal(t, "us-east-1", result.Region)
	assert.Equal(t, "test", result.Profile)
	assert.Len(t, result.Sections, len(AllSections()))
	for _, section := range AllSections() {
		sectionResult, ok := result.Section(section)
		require.True(t, ok, "missing section %s", section)
		assert.True(t, sectionResult.Success, "section %s failed: %s", section, sectionResult.Error)
	}
}

func TestCollect_EnvelopeExclusivity(t *testing.T) {
	q := newFakeQuery("vpc-test123")
	q.subnets = func(*ec2.DescribeSubnetsInput) (*ec2.DescribeSubnetsOutput, error) {
		return nil, errors.New("RequestLimitExceeded: throttled")
	}

	result, err := Collect(context.Background(), q, "vpc-test123", Options{})
	require.NoError(t, err)

	for section, sectionResult := range result.Sections {
		if sectionResult.Success {
			assert.NotNil(t, sectionResult.Data, "success section %s has no data", section)
			assert.Empty(t, sectionResult.Error, "success section %s carries an error", section)
		} else {
			assert.Nil(t, sectionResult.Data, "failed section %s carries data", section)
			assert.NotEmpty(t, sectionResult.Error, "failed section %s has no error", section)
		}
	}
}

func TestCollect_PartialFailureIsolation(t *testing.T) {
	q := newFakeQuery("vpc-test123")
	q.securityGroups = func(*ec2.DescribeSecurityGroupsInput) (*ec2.DescribeSecurityGroupsOutput, error) {
		return nil, errors.New("UnauthorizedOperation: denied")
	}

	result, err := Collect(context.Background(), q, "vpc-test123", Options{})
	require.NoError(t, err)

	sg, ok := result.Section(SectionSecurityGroups)
	require.True(t, ok)
	assert.False(t, sg.Success)
	assert.Contains(t, sg.Error, "UnauthorizedOperation")

	for _, section := range AllSections() {
		if section == SectionSecurityGroups {
			continue
		}
		sectionResult, ok := result.Section(section)
		require.True(t, ok)
		assert.True(t, sectionResult.Success, "section %s should not be affected", section)
	}
}

func TestCollect_VPCNotFound(t *testing.T) {
	q := newFakeQuery("vpc-test123")
	q.vpcs = func(*ec2.DescribeVpcsInput) (*ec2.DescribeVpcsOutput, error) {
		return &ec2.DescribeVpcsOutput{}, nil
	}

	result, err := Collect(context.Background(), q, "vpc-missing", Options{})
	assert.Nil(t, result)

	var notFound *VPCNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "vpc-missing", notFound.VPCID)
}

func TestCollect_SectionSelection(t *testing.T) {
	q := newFakeQuery("vpc-test123")

	// Requested out of order with an unknown name mixed in.
	result, err := Collect(context.Background(), q, "vpc-test123", Options{
		Sections: []string{"route_tables", "bogus_section", "subnets"},
	})
	require.NoError(t, err)

	assert.Len(t, result.Sections, 2)
	_, ok := result.Section(SectionSubnets)
	assert.True(t, ok)
	_, ok = result.Section(SectionRouteTables)
	assert.True(t, ok)
	_, ok = result.Section(SectionSecurityGroups)
	assert.False(t, ok)
}

func TestSelectSections_CanonicalOrder(t *testing.T) {
	selected := selectSections([]string{"flow_logs", "vpc", "subnets"})
	assert.Equal(t, []string{"vpc", "subnets", "flow_logs"}, selected)

	assert.Equal(t, AllSections(), selectSections(nil))
	assert.Empty(t, selectSections([]string{"nope"}))
}

func TestCollect_VPCSectionReusesUpfrontFetch(t *testing.T) {
	q := newFakeQuery("vpc-test123")

	result, err := Collect(context.Background(), q, "vpc-test123", Options{
		Sections: []string{SectionVPC},
	})
	require.NoError(t, err)

	// One describe for the upfront fetch, none for the section itself.
	assert.Equal(t, 1, q.callCount("DescribeVpcs"))

	vpcSection, ok := result.Section(SectionVPC)
	require.True(t, ok)
	details, ok := vpcSection.Data.(*VPCDetails)
	require.True(t, ok)
	assert.Equal(t, "10.0.0.0/16", details.CIDRBlock)
	require.NotNil(t, details.Name)
	assert.Equal(t, "test-vpc", *details.Name)
}

func TestCollect_EndToEnd(t *testing.T) {
	q := newFakeQuery("vpc-test123")
	q.subnets = func(in *ec2.DescribeSubnetsInput) (*ec2.DescribeSubnetsOutput, error) {
		require.Len(t, in.Filters, 1)
		assert.Equal(t, "vpc-id", aws.ToString(in.Filters[0].Name))
		return &ec2.DescribeSubnetsOutput{
			Subnets: []ec2types.Subnet{{
				SubnetId:            aws.String("subnet-1"),
				CidrBlock:           aws.String("10.0.1.0/24"),
				AvailabilityZone:    aws.String("us-east-1a"),
				VpcId:               aws.String("vpc-test123"),
				State:               ec2types.SubnetStateAvailable,
				MapPublicIpOnLaunch: aws.Bool(false),
			}},
		}, nil
	}
	q.routeTables = func(*ec2.DescribeRouteTablesInput) (*ec2.DescribeRouteTablesOutput, error) {
		return &ec2.DescribeRouteTablesOutput{
			RouteTables: []ec2types.RouteTable{{
				RouteTableId: aws.String("rtb-1"),
				VpcId:        aws.String("vpc-test123"),
				Associations: []ec2types.RouteTableAssociation{{
					Main:         aws.Bool(false),
					SubnetId:     aws.String("subnet-1"),
					RouteTableId: aws.String("rtb-1"),
				}},
			}},
		}, nil
	}

	result, err := Collect(context.Background(), q, "vpc-test123", Options{})
	require.NoError(t, err)

	subnets, ok := result.Section(SectionSubnets)
	require.True(t, ok)
	subnetsData := subnets.Data.(*SubnetsData)
	assert.Equal(t, 1, subnetsData.TotalCount)
	require.Len(t, subnetsData.Subnets, 1)
	assert.Equal(t, "subnet-1", subnetsData.Subnets[0].SubnetID)

	routeTables, ok := result.Section(SectionRouteTables)
	require.True(t, ok)
	rtData := routeTables.Data.(*RouteTablesData)
	require.Len(t, rtData.RouteTables, 1)
	assert.False(t, rtData.RouteTables[0].IsMain)
	assert.Equal(t, []string{"subnet-1"}, rtData.RouteTables[0].AssociatedSubnets)
}

type recordingProgress struct {
	started  []string
	finished []string
}

func (r *recordingProgress) SectionStarted(section string) { r.started = append(r.started, section) }
func (r *recordingProgress) SectionFinished(section string, _ SectionResult) {
	r.finished = append(r.finished, section)
}

func TestCollect_ProgressEvents(t *testing.T) {
	q := newFakeQuery("vpc-test123")
	progress := &recordingProgress{}

	_, err := Collect(context.Background(), q, "vpc-test123", Options{
		Sections: []string{SectionVPC, SectionSubnets},
		Progress: progress,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{SectionVPC, SectionSubnets}, progress.started)
	assert.Equal(t, []string{SectionVPC, SectionSubnets}, progress.finished)
}
