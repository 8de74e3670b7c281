package report

import (
	"fmt"
	"strings"

	"github.com/netscribe/vpcrecon/inventory"
)

// RenderConsole produces a compact terminal summary: one status line per
// section with its headline count, errors called out inline.
func RenderConsole(result *inventory.CollectionResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "VPC Report: %s (region %s", result.VPCID, result.Region)
	if result.Profile != "" {
		fmt.Fprintf(&b, ", profile %s", result.Profile)
	}
	b.WriteString(")\n\n")

	failed := 0
	for _, section := range inventory.AllSections() {
		sectionResult, ok := result.Section(section)
		if !ok {
			continue
		}
		title := sectionTitles[section]
		if !sectionResult.Success {
			failed++
			fmt.Fprintf(&b, "  ✗ %-36s %s\n", title, sectionResult.Error)
			continue
		}
		fmt.Fprintf(&b, "  ✓ %-36s %s\n", title, sectionSummary(sectionResult.Data))
	}

	fmt.Fprintf(&b, "\n%d sections collected", len(result.Sections))
	if failed > 0 {
		fmt.Fprintf(&b, ", %d failed", failed)
	}
	b.WriteString("\n")
	return b.String()
}

// sectionSummary returns the one-line count or identity for a payload.
func sectionSummary(data inventory.SectionData) string {
	switch d := data.(type) {
	case *inventory.VPCDetails:
		return fmt.Sprintf("%s (%s)", d.CIDRBlock, d.State)
	case *inventory.VPCAttributesData:
		return attributesSummary(d.Attributes)
	case *inventory.SubnetsData:
		return countSummary(d.TotalCount)
	case *inventory.RouteTablesData:
		return countSummary(d.TotalCount)
	case *inventory.SecurityGroupsData:
		return countSummary(d.TotalCount)
	case *inventory.NetworkACLsData:
		return countSummary(d.TotalCount)
	case *inventory.InternetGatewaysData:
		return countSummary(d.TotalCount)
	case *inventory.NATGatewaysData:
		return countSummary(d.TotalCount)
	case *inventory.ElasticIPsData:
		return fmt.Sprintf("%d (%d unassociated)", d.TotalCount, d.UnassociatedCount)
	case *inventory.VPCEndpointsData:
		return countSummary(d.TotalCount)
	case *inventory.PeeringData:
		return countSummary(d.TotalCount)
	case *inventory.TGWAttachmentsData:
		return countSummary(d.TotalCount)
	case *inventory.VPNConnectionsData:
		return vpnSummary(d)
	case *inventory.CustomerGatewaysData:
		return countSummary(d.TotalCount)
	case *inventory.VPNGatewaysData:
		return countSummary(d.TotalCount)
	case *inventory.DHCPOptionsData:
		if d.DHCPOptionsID == nil {
			return "none"
		}
		return *d.DHCPOptionsID
	case *inventory.FlowLogsData:
		return countSummary(d.TotalCount)
	case *inventory.NetworkInterfacesData:
		return fmt.Sprintf("%d (%d AWS-managed)", d.TotalCount, d.AWSManagedCount)
	case *inventory.DXVIFsData:
		if d.Error != "" {
			return "unavailable"
		}
		return countSummary(d.TotalCount)
	}
	return ""
}

func countSummary(n int) string {
	return fmt.Sprintf("%d", n)
}

func attributesSummary(attrs inventory.VPCAttributes) string {
	onOff := func(v *bool) string {
		if v == nil {
			return "?"
		}
		if *v {
			return "on"
		}
		return "off"
	}
	return fmt.Sprintf("dns-support=%s dns-hostnames=%s",
		onOff(attrs.EnableDNSSupport), onOff(attrs.EnableDNSHostnames))
}

func vpnSummary(d *inventory.VPNConnectionsData) string {
	if d.TotalCount == 0 {
		return "0"
	}
	down := 0
	for _, vpn := range d.VPNConnections {
		if !vpn.AllTunnelsUp {
			down++
		}
	}
	if down > 0 {
		return fmt.Sprintf("%d (%d with tunnels down)", d.TotalCount, down)
	}
	return fmt.Sprintf("%d (all tunnels up)", d.TotalCount)
}
