// Package report renders a collection result as markdown, JSON, YAML, or a
// console summary.
package report

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/netscribe/vpcrecon/inventory"
)

// Generator names the tool in report headers.
const Generator = "vpcrecon v0.1.0"

// Format selects an output renderer.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatConsole  Format = "console"
)

// ParseFormat validates a format name from the CLI.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatMarkdown, FormatJSON, FormatYAML, FormatConsole:
		return Format(name), nil
	}
	return "", fmt.Errorf("unknown output format %q (want markdown, json, yaml, or console)", name)
}

// Extension returns the file extension for saved reports.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatYAML:
		return ".yaml"
	default:
		return ".md"
	}
}

// document is the serialized report shape. The generated_at and generator
// fields come first so readers can tell stale reports apart.
type document struct {
	GeneratedAt string                             `json:"generated_at" yaml:"generated_at"`
	Generator   string                             `json:"generator" yaml:"generator"`
	VPCID       string                             `json:"vpc_id" yaml:"vpc_id"`
	Region      string                             `json:"region" yaml:"region"`
	Profile     string                             `json:"profile" yaml:"profile"`
	Sections    map[string]inventory.SectionResult `json:"sections" yaml:"sections"`
}

func newDocument(result *inventory.CollectionResult, now time.Time) document {
	return document{
		GeneratedAt: now.Format(time.RFC3339),
		Generator:   Generator,
		VPCID:       result.VPCID,
		Region:      result.Region,
		Profile:     result.Profile,
		Sections:    result.Sections,
	}
}

// RenderJSON serializes the result with a metadata header.
func RenderJSON(result *inventory.CollectionResult, now time.Time) (string, error) {
	out, err := json.MarshalIndent(newDocument(result, now), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render JSON report: %w", err)
	}
	return string(out), nil
}

// RenderYAML serializes the result with a metadata header.
func RenderYAML(result *inventory.CollectionResult, now time.Time) (string, error) {
	out, err := yaml.Marshal(newDocument(result, now))
	if err != nil {
		return "", fmt.Errorf("failed to render YAML report: %w", err)
	}
	return string(out), nil
}

// Render dispatches to the renderer for the chosen format.
func Render(format Format, result *inventory.CollectionResult, now time.Time) (string, error) {
	switch format {
	case FormatJSON:
		return RenderJSON(result, now)
	case FormatYAML:
		return RenderYAML(result, now)
	case FormatConsole:
		return RenderConsole(result), nil
	default:
		return RenderMarkdown(result, now), nil
	}
}

// sectionTitles maps section keys to human headings, used by the markdown
// and console renderers.
var sectionTitles = map[string]string{
	inventory.SectionVPC:               "VPC Overview",
	inventory.SectionVPCAttributes:     "VPC Attributes",
	inventory.SectionSubnets:           "Subnets",
	inventory.SectionRouteTables:       "Route Tables",
	inventory.SectionSecurityGroups:    "Security Groups",
	inventory.SectionNetworkACLs:       "Network ACLs",
	inventory.SectionInternetGateways:  "Internet Gateways",
	inventory.SectionNATGateways:       "NAT Gateways",
	inventory.SectionElasticIPs:        "Elastic IPs",
	inventory.SectionVPCEndpoints:      "VPC Endpoints",
	inventory.SectionVPCPeering:        "VPC Peering Connections",
	inventory.SectionTransitGateway:    "Transit Gateway Attachments",
	inventory.SectionVPNConnections:    "VPN Connections",
	inventory.SectionCustomerGateways:  "Customer Gateways",
	inventory.SectionVPNGateways:       "VPN Gateways",
	inventory.SectionDHCPOptions:       "DHCP Options",
	inventory.SectionFlowLogs:          "VPC Flow Logs",
	inventory.SectionNetworkInterfaces: "Network Interfaces",
	inventory.SectionDirectConnectVIFs: "Direct Connect Virtual Interfaces",
}
