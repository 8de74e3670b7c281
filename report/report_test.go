package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/netscribe/vpcrecon/inventory"
)

func sampleResult() *inventory.CollectionResult {
	return &inventory.CollectionResult{
		VPCID:   "vpc-report",
		Region:  "us-east-1",
		Profile: "default",
		Sections: map[string]inventory.SectionResult{
			inventory.SectionSubnets: {
				Success: true,
				Data: &inventory.SubnetsData{
					TotalCount: 1,
					Subnets: []inventory.Subnet{{
						SubnetID:         "subnet-1",
						CIDRBlock:        "10.0.1.0/24",
						AvailabilityZone: "us-east-1a",
						State:            "available",
						Name:             aws.String("app-subnet"),
					}},
				},
			},
			inventory.SectionSecurityGroups: {
				Success: false,
				Error:   "UnauthorizedOperation: denied",
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"markdown", "json", "yaml", "console"} {
		format, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, Format(name), format)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestFormatExtension(t *testing.T) {
	assert.Equal(t, ".md", FormatMarkdown.Extension())
	assert.Equal(t, ".json", FormatJSON.Extension())
	assert.Equal(t, ".yaml", FormatYAML.Extension())
}

func TestRenderJSON_Header(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	out, err := RenderJSON(sampleResult(), now)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	var generatedAt, generator, vpcID string
	require.NoError(t, json.Unmarshal(doc["generated_at"], &generatedAt))
	require.NoError(t, json.Unmarshal(doc["generator"], &generator))
	require.NoError(t, json.Unmarshal(doc["vpc_id"], &vpcID))

	assert.Equal(t, "2026-03-01T12:00:00Z", generatedAt)
	assert.Equal(t, Generator, generator)
	assert.Equal(t, "vpc-report", vpcID)
	assert.Contains(t, string(doc["sections"]), "subnet-1")
}

func TestRenderYAML_RoundTrips(t *testing.T) {
	out, err := RenderYAML(sampleResult(), time.Now())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "vpc-report", doc["vpc_id"])
	assert.Equal(t, Generator, doc["generator"])
}

func TestRenderMarkdown_FailedSectionShowsError(t *testing.T) {
	out := RenderMarkdown(sampleResult(), time.Now())

	assert.Contains(t, out, "# VPC Network Details Report")
	assert.Contains(t, out, "**VPC ID:** vpc-report")
	assert.Contains(t, out, "## Security Groups\n\n**Error:** UnauthorizedOperation: denied")
	assert.Contains(t, out, "subnet-1")
	assert.Contains(t, out, "app-subnet")
}

func TestRenderMarkdown_TOCOnlyListsCollectedSections(t *testing.T) {
	out := RenderMarkdown(sampleResult(), time.Now())

	tocStart := strings.Index(out, "## Table of Contents")
	require.GreaterOrEqual(t, tocStart, 0)
	toc := out[tocStart:strings.Index(out, "## Subnets")]

	assert.Contains(t, toc, "[Subnets](#subnets)")
	assert.Contains(t, toc, "[Security Groups](#security-groups)")
	assert.NotContains(t, toc, "NAT Gateways")
}

func TestRenderConsole_MarksFailures(t *testing.T) {
	out := RenderConsole(sampleResult())

	assert.Contains(t, out, "vpc-report")
	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "✗")
	assert.Contains(t, out, "UnauthorizedOperation")
}

func TestRender_Dispatch(t *testing.T) {
	result := sampleResult()
	now := time.Now()

	md, err := Render(FormatMarkdown, result, now)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(md, "# VPC Network Details Report"))

	jsonOut, err := Render(FormatJSON, result, now)
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(jsonOut)))
}
