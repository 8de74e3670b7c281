package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/netscribe/vpcrecon/inventory"
)

// RenderMarkdown produces the full markdown report: header, table of
// contents, one section per collected result, and a footer. Failed sections
// render an error line instead of their tables.
func RenderMarkdown(result *inventory.CollectionResult, now time.Time) string {
	var parts []string

	parts = append(parts, markdownHeader(result, now))
	parts = append(parts, markdownTOC(result))

	for _, section := range inventory.AllSections() {
		sectionResult, ok := result.Section(section)
		if !ok {
			continue
		}
		parts = append(parts, markdownSection(section, sectionResult))
	}

	parts = append(parts, fmt.Sprintf("---\n\n*Report generated by %s*", Generator))

	return strings.Join(parts, "\n\n")
}

func markdownHeader(result *inventory.CollectionResult, now time.Time) string {
	return fmt.Sprintf(`# VPC Network Details Report

**Generated:** %s
**AWS Profile:** %s
**Region:** %s
**VPC ID:** %s
**Sections:** %d

---`,
		now.Format("2006-01-02 15:04:05 MST"),
		result.Profile, result.Region, result.VPCID, len(result.Sections))
}

func markdownTOC(result *inventory.CollectionResult) string {
	var b strings.Builder
	b.WriteString("## Table of Contents\n\n")
	idx := 0
	for _, section := range inventory.AllSections() {
		if _, ok := result.Section(section); !ok {
			continue
		}
		idx++
		title := sectionTitles[section]
		anchor := strings.ReplaceAll(strings.ToLower(title), " ", "-")
		fmt.Fprintf(&b, "%d. [%s](#%s)\n", idx, title, anchor)
	}
	b.WriteString("\n---")
	return b.String()
}

func markdownSection(section string, result inventory.SectionResult) string {
	title := sectionTitles[section]
	if !result.Success {
		return fmt.Sprintf("## %s\n\n**Error:** %s", title, result.Error)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", title)

	switch data := result.Data.(type) {
	case *inventory.VPCDetails:
		writeVPCOverview(&b, data)
	case *inventory.VPCAttributesData:
		writeVPCAttributes(&b, data)
	case *inventory.SubnetsData:
		writeSubnets(&b, data)
	case *inventory.RouteTablesData:
		writeRouteTables(&b, data)
	case *inventory.SecurityGroupsData:
		writeSecurityGroups(&b, data)
	case *inventory.NetworkACLsData:
		writeNetworkACLs(&b, data)
	case *inventory.InternetGatewaysData:
		writeInternetGateways(&b, data)
	case *inventory.NATGatewaysData:
		writeNATGateways(&b, data)
	case *inventory.ElasticIPsData:
		writeElasticIPs(&b, data)
	case *inventory.VPCEndpointsData:
		writeVPCEndpoints(&b, data)
	case *inventory.PeeringData:
		writePeering(&b, data)
	case *inventory.TGWAttachmentsData:
		writeTGWAttachments(&b, data)
	case *inventory.VPNConnectionsData:
		writeVPNConnections(&b, data)
	case *inventory.CustomerGatewaysData:
		writeCustomerGateways(&b, data)
	case *inventory.VPNGatewaysData:
		writeVPNGateways(&b, data)
	case *inventory.DHCPOptionsData:
		writeDHCPOptions(&b, data)
	case *inventory.FlowLogsData:
		writeFlowLogs(&b, data)
	case *inventory.NetworkInterfacesData:
		writeNetworkInterfaces(&b, data)
	case *inventory.DXVIFsData:
		writeDXVIFs(&b, data)
	default:
		b.WriteString(rawJSONBlock("Section Data", data))
	}

	return strings.TrimRight(b.String(), "\n")
}

func displayName(name *string) string {
	if name == nil || *name == "" {
		return "<No Name>"
	}
	return *name
}

func strOrNA(s *string) string {
	if s == nil || *s == "" {
		return "N/A"
	}
	return *s
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func rawJSONBlock(heading string, v any) string {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		raw = []byte("{}")
	}
	return fmt.Sprintf("### %s\n\n```json\n%s\n```\n", heading, raw)
}

func writeVPCOverview(b *strings.Builder, vpc *inventory.VPCDetails) {
	fmt.Fprintf(b, "**VPC ID:** %s  \n", vpc.VPCID)
	fmt.Fprintf(b, "**Name:** %s  \n", displayName(vpc.Name))
	fmt.Fprintf(b, "**CIDR Block:** %s  \n", vpc.CIDRBlock)
	fmt.Fprintf(b, "**State:** %s  \n", vpc.State)
	fmt.Fprintf(b, "**Instance Tenancy:** %s  \n", vpc.InstanceTenancy)
	fmt.Fprintf(b, "**Default VPC:** %s  \n", yesNo(vpc.IsDefault))
	fmt.Fprintf(b, "**DHCP Options ID:** %s  \n", strOrNA(vpc.DHCPOptionsID))

	if len(vpc.AdditionalCIDRBlocks) > 0 {
		b.WriteString("\n**Additional CIDR Blocks:**\n")
		for _, cidr := range vpc.AdditionalCIDRBlocks {
			fmt.Fprintf(b, "- %s\n", cidr)
		}
	}
	if len(vpc.IPv6CIDRBlocks) > 0 {
		b.WriteString("\n**IPv6 CIDR Blocks:**\n")
		for _, cidr := range vpc.IPv6CIDRBlocks {
			fmt.Fprintf(b, "- %s\n", cidr)
		}
	}

	b.WriteString("\n")
	b.WriteString(rawJSONBlock("Full VPC Details", vpc.Raw))
}

func writeVPCAttributes(b *strings.Builder, data *inventory.VPCAttributesData) {
	writeBoolAttr := func(name string, v *bool) {
		if v == nil {
			fmt.Fprintf(b, "**%s:** Unknown  \n", name)
			return
		}
		fmt.Fprintf(b, "**%s:** %s  \n", name, yesNo(*v))
	}
	writeBoolAttr("DNS Support", data.Attributes.EnableDNSSupport)
	writeBoolAttr("DNS Hostnames", data.Attributes.EnableDNSHostnames)
	writeBoolAttr("Network Address Usage Metrics", data.Attributes.EnableNetworkAddressUsageMetrics)
}

func writeSubnets(b *strings.Builder, data *inventory.SubnetsData) {
	fmt.Fprintf(b, "**Total Subnets:** %d\n\n", data.TotalCount)
	b.WriteString("### Subnet Summary\n\n")
	b.WriteString("| Subnet ID | Name | CIDR | AZ | Available IPs | Public | State |\n")
	b.WriteString("|-----------|------|------|----|--------------:|--------|-------|\n")
	for _, subnet := range data.Subnets {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %d | %s | %s |\n",
			subnet.SubnetID, displayName(subnet.Name), subnet.CIDRBlock,
			subnet.AvailabilityZone, subnet.AvailableIPCount,
			yesNo(subnet.MapPublicIP), subnet.State)
	}
	b.WriteString("\n")
	b.WriteString(rawJSONBlock("Full Subnet Details", data.Raw))
}

func writeRouteTables(b *strings.Builder, data *inventory.RouteTablesData) {
	fmt.Fprintf(b, "**Total Route Tables:** %d\n\n", data.TotalCount)
	for _, rt := range data.RouteTables {
		kind := "Custom"
		if rt.IsMain {
			kind = "Main"
		}
		fmt.Fprintf(b, "### %s - %s (%s)\n\n", rt.RouteTableID, displayName(rt.Name), kind)

		b.WriteString("**Associated Subnets:**\n")
		if len(rt.AssociatedSubnets) == 0 {
			b.WriteString("- None (Main route table)\n")
		}
		for _, subnetID := range rt.AssociatedSubnets {
			fmt.Fprintf(b, "- %s\n", subnetID)
		}

		b.WriteString("\n**Routes:**\n\n")
		b.WriteString("| Destination | Target | Status | Origin |\n")
		b.WriteString("|-------------|--------|--------|--------|\n")
		for _, route := range rt.Routes {
			fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
				route.Destination, route.Target, route.State, route.Origin)
		}
		b.WriteString("\n")
	}
	b.WriteString(rawJSONBlock("Full Route Table Details", data.Raw))
}

func writeSecurityGroups(b *strings.Builder, data *inventory.SecurityGroupsData) {
	fmt.Fprintf(b, "**Total Security Groups:** %d\n\n", data.TotalCount)

	b.WriteString("### Security Group Summary\n\n")
	b.WriteString("| Group ID | Name | Description | Inbound Rules | Outbound Rules |\n")
	b.WriteString("|----------|------|-------------|--------------:|---------------:|\n")
	for _, sg := range data.SecurityGroups {
		desc := sg.Description
		if len(desc) > 50 {
			desc = desc[:50] + "..."
		}
		fmt.Fprintf(b, "| %s | %s | %s | %d | %d |\n",
			sg.GroupID, sg.GroupName, desc, sg.InboundRulesCount, sg.OutboundRulesCount)
	}

	b.WriteString("\n### Detailed Security Group Rules\n\n")
	for _, sg := range data.SecurityGroups {
		fmt.Fprintf(b, "#### %s - %s\n\n", sg.GroupID, sg.GroupName)
		fmt.Fprintf(b, "**Description:** %s  \n", sg.Description)
		fmt.Fprintf(b, "**VPC ID:** %s  \n", sg.VPCID)
		fmt.Fprintf(b, "**Owner ID:** %s  \n\n", sg.OwnerID)

		writeSGRules(b, "Inbound Rules", "Source", sg.InboundRules)
		writeSGRules(b, "Outbound Rules", "Destination", sg.OutboundRules)
	}
	b.WriteString(rawJSONBlock("Full Security Group Details", data.Raw))
}

func writeSGRules(b *strings.Builder, heading, direction string, rules []inventory.SecurityGroupRule) {
	if len(rules) == 0 {
		fmt.Fprintf(b, "**%s:** None\n\n", heading)
		return
	}
	fmt.Fprintf(b, "**%s:**\n\n", heading)
	fmt.Fprintf(b, "| Type | Protocol | Port | %s | Description |\n", direction)
	b.WriteString("|------|----------|------|--------|-------------|\n")
	for _, rule := range rules {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			rule.Type, rule.Protocol, rule.PortRange, rule.Source, rule.Description)
	}
	b.WriteString("\n")
}

func writeNetworkACLs(b *strings.Builder, data *inventory.NetworkACLsData) {
	fmt.Fprintf(b, "**Total Network ACLs:** %d\n\n", data.TotalCount)

	b.WriteString("### Network ACL Summary\n\n")
	b.WriteString("| NACL ID | Name | Default | Subnets | Inbound Rules | Outbound Rules |\n")
	b.WriteString("|---------|------|---------|--------:|--------------:|---------------:|\n")
	for _, nacl := range data.NetworkACLs {
		fmt.Fprintf(b, "| %s | %s | %s | %d | %d | %d |\n",
			nacl.NetworkACLID, displayName(nacl.Name), yesNo(nacl.IsDefault),
			nacl.AssociatedSubnetCount, nacl.InboundRulesCount, nacl.OutboundRulesCount)
	}

	b.WriteString("\n### Detailed Network ACL Rules\n\n")
	for _, nacl := range data.NetworkACLs {
		fmt.Fprintf(b, "#### %s - %s\n\n", nacl.NetworkACLID, displayName(nacl.Name))
		fmt.Fprintf(b, "**Default:** %s  \n", yesNo(nacl.IsDefault))
		fmt.Fprintf(b, "**VPC ID:** %s  \n", nacl.VPCID)
		fmt.Fprintf(b, "**Associated Subnets:** %d  \n\n", nacl.AssociatedSubnetCount)

		writeNACLRules(b, "Inbound Rules", "Source", nacl.InboundRules)
		writeNACLRules(b, "Outbound Rules", "Destination", nacl.OutboundRules)
	}
	b.WriteString(rawJSONBlock("Full Network ACL Details", data.Raw))
}

func writeNACLRules(b *strings.Builder, heading, direction string, rules []inventory.NetworkACLRule) {
	if len(rules) == 0 {
		fmt.Fprintf(b, "**%s:** None\n\n", heading)
		return
	}
	fmt.Fprintf(b, "**%s:**\n\n", heading)
	fmt.Fprintf(b, "| Rule # | Action | Protocol | Port | %s | ICMP |\n", direction)
	b.WriteString("|-------:|--------|----------|------|--------|------|\n")
	for _, rule := range rules {
		fmt.Fprintf(b, "| %d | %s | %s | %s | %s | %s |\n",
			rule.RuleNumber, rule.RuleAction, rule.Protocol,
			rule.PortRange, rule.CIDRBlock, rule.ICMPInfo)
	}
	b.WriteString("\n")
}

func writeInternetGateways(b *strings.Builder, data *inventory.InternetGatewaysData) {
	fmt.Fprintf(b, "**Total Internet Gateways:** %d\n\n", data.TotalCount)
	b.WriteString("| IGW ID | Name | Attached VPC | State |\n")
	b.WriteString("|--------|------|--------------|-------|\n")
	for _, igw := range data.InternetGateways {
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
			igw.InternetGatewayID, displayName(igw.Name),
			strOrNA(igw.AttachedVPCID), strOrNA(igw.AttachmentState))
	}
}

func writeNATGateways(b *strings.Builder, data *inventory.NATGatewaysData) {
	fmt.Fprintf(b, "**Total NAT Gateways:** %d\n\n", data.TotalCount)
	b.WriteString("| NAT Gateway ID | Name | Subnet | State | Type | Public IP |\n")
	b.WriteString("|----------------|------|--------|-------|------|----------|\n")
	for _, nat := range data.NATGateways {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s |\n",
			nat.NATGatewayID, displayName(nat.Name), nat.SubnetID,
			nat.State, nat.ConnectivityType, strOrNA(nat.PrimaryPublicIP))
	}
}

func writeElasticIPs(b *strings.Builder, data *inventory.ElasticIPsData) {
	fmt.Fprintf(b, "**Total Elastic IPs:** %d (associated: %d, unassociated: %d)\n\n",
		data.TotalCount, data.AssociatedCount, data.UnassociatedCount)
	b.WriteString("| Public IP | Name | Allocation ID | Associated | Private IP |\n")
	b.WriteString("|-----------|------|---------------|------------|------------|\n")
	for _, eip := range data.ElasticIPs {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			eip.PublicIP, displayName(eip.Name), eip.AllocationID,
			yesNo(eip.IsAssociated), strOrNA(eip.PrivateIPAddress))
	}
}

func writeVPCEndpoints(b *strings.Builder, data *inventory.VPCEndpointsData) {
	fmt.Fprintf(b, "**Total VPC Endpoints:** %d (interface: %d, gateway: %d, gateway load balancer: %d)\n\n",
		data.TotalCount, data.InterfaceCount, data.GatewayCount, data.GatewayLoadBalancerCount)
	b.WriteString("| Endpoint ID | Service | Type | State | Private DNS |\n")
	b.WriteString("|-------------|---------|------|-------|-------------|\n")
	for _, ep := range data.VPCEndpoints {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			ep.VPCEndpointID, ep.ServiceShortName, ep.VPCEndpointType,
			ep.State, yesNo(ep.PrivateDNSEnabled))
	}
}

func writePeering(b *strings.Builder, data *inventory.PeeringData) {
	fmt.Fprintf(b, "**Total Peering Connections:** %d (cross-account: %d, cross-region: %d)\n\n",
		data.TotalCount, data.CrossAccountCount, data.CrossRegionCount)
	b.WriteString("| Peering ID | Name | Role | Peer VPC | Peer Region | Status |\n")
	b.WriteString("|------------|------|------|----------|-------------|--------|\n")
	for _, peering := range data.PeeringConnections {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s |\n",
			peering.VPCPeeringConnectionID, displayName(peering.Name), peering.Role,
			peering.PeerVPC.VPCID, peering.PeerVPC.Region, peering.StatusCode)
	}
}

func writeTGWAttachments(b *strings.Builder, data *inventory.TGWAttachmentsData) {
	fmt.Fprintf(b, "**Total Transit Gateway Attachments:** %d\n\n", data.TotalCount)
	b.WriteString("| Attachment ID | Name | Transit Gateway | State | Subnets | DNS Support |\n")
	b.WriteString("|---------------|------|-----------------|-------|--------:|-------------|\n")
	for _, att := range data.Attachments {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %d | %s |\n",
			att.TransitGatewayAttachmentID, displayName(att.Name),
			att.TransitGatewayID, att.State, att.SubnetCount, att.Options.DNSSupport)
	}
}

func writeVPNConnections(b *strings.Builder, data *inventory.VPNConnectionsData) {
	fmt.Fprintf(b, "**Total VPN Connections:** %d\n\n", data.TotalCount)
	b.WriteString("| VPN ID | Name | State | Gateway | Tunnels Up | All Tunnels Up |\n")
	b.WriteString("|--------|------|-------|---------|-----------:|----------------|\n")
	for _, vpn := range data.VPNConnections {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %d/%d | %s |\n",
			vpn.VPNConnectionID, displayName(vpn.Name), vpn.State,
			strOrNA(vpn.GatewayID), vpn.TunnelsUp, len(vpn.VGWTelemetry),
			yesNo(vpn.AllTunnelsUp))
	}
}

func writeCustomerGateways(b *strings.Builder, data *inventory.CustomerGatewaysData) {
	fmt.Fprintf(b, "**Total Customer Gateways:** %d\n\n", data.TotalCount)
	b.WriteString("| CGW ID | Name | IP Address | BGP ASN | State |\n")
	b.WriteString("|--------|------|------------|---------|-------|\n")
	for _, cgw := range data.CustomerGateways {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			cgw.CustomerGatewayID, displayName(cgw.Name),
			strOrNA(cgw.IPAddress), strOrNA(cgw.BGPASN), cgw.State)
	}
}

func writeVPNGateways(b *strings.Builder, data *inventory.VPNGatewaysData) {
	fmt.Fprintf(b, "**Total VPN Gateways:** %d\n\n", data.TotalCount)
	b.WriteString("| VGW ID | Name | State | Attached VPC | Amazon ASN |\n")
	b.WriteString("|--------|------|-------|--------------|------------|\n")
	for _, vgw := range data.VPNGateways {
		asn := "N/A"
		if vgw.AmazonSideASN != nil {
			asn = fmt.Sprintf("%d", *vgw.AmazonSideASN)
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			vgw.VPNGatewayID, displayName(vgw.Name), vgw.State,
			strOrNA(vgw.AttachedVPCID), asn)
	}
}

func writeDHCPOptions(b *strings.Builder, data *inventory.DHCPOptionsData) {
	if data.DHCPOptionsID == nil {
		b.WriteString("No DHCP options set is associated with this VPC.\n")
		return
	}
	fmt.Fprintf(b, "**DHCP Options ID:** %s  \n", *data.DHCPOptionsID)
	fmt.Fprintf(b, "**Name:** %s  \n\n", displayName(data.Name))
	if len(data.Configurations) == 0 {
		b.WriteString("No configurations found.\n")
		return
	}
	b.WriteString("| Option | Values |\n")
	b.WriteString("|--------|--------|\n")
	for _, key := range []string{"domain-name", "domain-name-servers", "ntp-servers", "netbios-name-servers", "netbios-node-type"} {
		if values, ok := data.Configurations[key]; ok {
			fmt.Fprintf(b, "| %s | %s |\n", key, strings.Join(values, ", "))
		}
	}
}

func writeFlowLogs(b *strings.Builder, data *inventory.FlowLogsData) {
	fmt.Fprintf(b, "**Total Flow Logs:** %d\n\n", data.TotalCount)
	b.WriteString("| Flow Log ID | Status | Traffic | Destination Type | Destination |\n")
	b.WriteString("|-------------|--------|---------|------------------|-------------|\n")
	for _, fl := range data.FlowLogs {
		destination := strOrNA(fl.LogDestination)
		if destination == "N/A" {
			destination = strOrNA(fl.LogGroupName)
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			fl.FlowLogID, fl.FlowLogStatus, fl.TrafficType,
			fl.LogDestinationType, destination)
	}
}

func writeNetworkInterfaces(b *strings.Builder, data *inventory.NetworkInterfacesData) {
	fmt.Fprintf(b, "**Total Network Interfaces:** %d (AWS-managed: %d, user-managed: %d)\n\n",
		data.TotalCount, data.AWSManagedCount, data.UserManagedCount)

	if len(data.InterfaceTypeCounts) > 0 {
		b.WriteString("### Interface Types\n\n")
		b.WriteString("| Type | Count |\n")
		b.WriteString("|------|------:|\n")
		types := make([]string, 0, len(data.InterfaceTypeCounts))
		for itype := range data.InterfaceTypeCounts {
			types = append(types, itype)
		}
		sort.Strings(types)
		for _, itype := range types {
			fmt.Fprintf(b, "| %s | %d |\n", itype, data.InterfaceTypeCounts[itype])
		}
		b.WriteString("\n")
	}

	b.WriteString("### Interface Summary\n\n")
	b.WriteString("| ENI ID | Owner | Subnet | Private IP | Public IP | Status |\n")
	b.WriteString("|--------|-------|--------|------------|-----------|--------|\n")
	for _, eni := range data.NetworkInterfaces {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s |\n",
			eni.NetworkInterfaceID, eni.OwnerDescription, strOrNA(eni.SubnetID),
			strOrNA(eni.PrivateIPAddress), strOrNA(eni.PublicIP), eni.Status)
	}
}

func writeDXVIFs(b *strings.Builder, data *inventory.DXVIFsData) {
	if data.Error != "" {
		fmt.Fprintf(b, "**Warning:** %s\n\n", data.Error)
	}
	fmt.Fprintf(b, "**Total Virtual Interfaces:** %d\n\n", data.TotalCount)
	if data.TotalCount == 0 {
		return
	}
	b.WriteString("| VIF ID | Name | Type | State | VLAN | BGP Up | All BGP Up |\n")
	b.WriteString("|--------|------|------|-------|-----:|-------:|------------|\n")
	for _, vif := range data.VirtualInterfaces {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %d | %d/%d | %s |\n",
			vif.VirtualInterfaceID, strOrNA(vif.VirtualInterfaceName),
			strOrNA(vif.VirtualInterfaceType), vif.VirtualInterfaceState,
			vif.VLAN, vif.BGPSessionsUp, vif.BGPPeerCount, yesNo(vif.AllBGPSessionsUp))
	}
}
