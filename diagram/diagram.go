// Package diagram renders a collection result as a Graphviz DOT topology
// graph: the VPC as a cluster of subnets, with gateways, peerings, and
// attachments connected around it.
package diagram

import (
	"fmt"
	"io"
	"strings"

	"github.com/emicklei/dot"

	"github.com/netscribe/vpcrecon/inventory"
)

// Generator renders topology graphs.
type Generator struct {
	// IncludeENIs adds one node per network interface. Off by default;
	// large VPCs produce unreadable graphs with it.
	IncludeENIs bool
}

// Generate writes the DOT graph for result to w.
func (g *Generator) Generate(result *inventory.CollectionResult, w io.Writer) error {
	graph := g.buildGraph(result)
	_, err := w.Write([]byte(graph.String()))
	return err
}

// GenerateString returns the DOT graph as a string.
func (g *Generator) GenerateString(result *inventory.CollectionResult) (string, error) {
	var sb strings.Builder
	if err := g.Generate(result, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (g *Generator) buildGraph(result *inventory.CollectionResult) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "TB")
	graph.Attr("label", fmt.Sprintf("VPC %s (%s)", result.VPCID, result.Region))

	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})
	graph.EdgeInitializer(func(e dot.Edge) {
		e.Attr("fontname", "Arial")
		e.Attr("fontsize", "10")
	})

	vpcCluster := graph.Subgraph(result.VPCID, dot.ClusterOption{})
	vpcCluster.Attr("style", "rounded")
	vpcCluster.Attr("bgcolor", "lightyellow")
	if details, ok := sectionPayload[*inventory.VPCDetails](result, inventory.SectionVPC); ok {
		vpcCluster.Attr("label", fmt.Sprintf("%s\\n%s", result.VPCID, details.CIDRBlock))
	} else {
		vpcCluster.Attr("label", result.VPCID)
	}

	g.addSubnets(vpcCluster, result)
	g.addRouting(graph, vpcCluster, result)
	g.addPeerings(graph, vpcCluster, result)
	g.addVPN(graph, vpcCluster, result)

	return graph
}

func (g *Generator) addSubnets(cluster *dot.Graph, result *inventory.CollectionResult) {
	data, ok := sectionPayload[*inventory.SubnetsData](result, inventory.SectionSubnets)
	if !ok {
		return
	}
	for _, subnet := range data.Subnets {
		n := cluster.Node(subnet.SubnetID)
		label := fmt.Sprintf("%s\\n%s\\n%s", subnet.SubnetID, subnet.CIDRBlock, subnet.AvailabilityZone)
		if subnet.Name != nil {
			label = *subnet.Name + "\\n" + label
		}
		n.Label(label)
		if subnet.MapPublicIP {
			n.Attr("fillcolor", "palegreen")
			n.Attr("style", "filled")
		}
	}
}

// addRouting draws internet and NAT gateways plus the subnet associations
// known from route tables.
func (g *Generator) addRouting(graph *dot.Graph, cluster *dot.Graph, result *inventory.CollectionResult) {
	if igws, ok := sectionPayload[*inventory.InternetGatewaysData](result, inventory.SectionInternetGateways); ok {
		for _, igw := range igws.InternetGateways {
			n := graph.Node(igw.InternetGatewayID)
			n.Label("Internet Gateway\\n" + igw.InternetGatewayID)
			n.Attr("shape", "hexagon")
			graph.Edge(n, clusterAnchor(cluster, result))
		}
	}

	if nats, ok := sectionPayload[*inventory.NATGatewaysData](result, inventory.SectionNATGateways); ok {
		// Only hang NAT gateways off subnet nodes when the subnets section
		// actually produced them; otherwise naming the subnet would
		// materialize a node for a failed section.
		_, subnetsOK := sectionPayload[*inventory.SubnetsData](result, inventory.SectionSubnets)
		for _, nat := range nats.NATGateways {
			n := graph.Node(nat.NATGatewayID)
			label := "NAT Gateway\\n" + nat.NATGatewayID
			if nat.PrimaryPublicIP != nil {
				label += "\\n" + *nat.PrimaryPublicIP
			}
			n.Label(label)
			n.Attr("shape", "hexagon")
			if subnetsOK && nat.SubnetID != "" {
				graph.Edge(cluster.Node(nat.SubnetID), n)
			} else {
				graph.Edge(clusterAnchor(cluster, result), n)
			}
		}
	}

	if endpoints, ok := sectionPayload[*inventory.VPCEndpointsData](result, inventory.SectionVPCEndpoints); ok {
		for _, ep := range endpoints.VPCEndpoints {
			n := graph.Node(ep.VPCEndpointID)
			n.Label(fmt.Sprintf("%s Endpoint\\n%s", ep.ServiceShortName, ep.VPCEndpointID))
			n.Attr("shape", "ellipse")
			graph.Edge(clusterAnchor(cluster, result), n)
		}
	}
}

func (g *Generator) addPeerings(graph *dot.Graph, cluster *dot.Graph, result *inventory.CollectionResult) {
	data, ok := sectionPayload[*inventory.PeeringData](result, inventory.SectionVPCPeering)
	if !ok {
		return
	}
	for _, peering := range data.PeeringConnections {
		peer := graph.Node(peering.PeerVPC.VPCID)
		peer.Label(fmt.Sprintf("Peer VPC\\n%s\\n%s", peering.PeerVPC.VPCID, peering.PeerVPC.CIDRBlock))
		peer.Attr("style", "dashed")
		e := graph.Edge(clusterAnchor(cluster, result), peer)
		e.Label(peering.VPCPeeringConnectionID)
	}
}

func (g *Generator) addVPN(graph *dot.Graph, cluster *dot.Graph, result *inventory.CollectionResult) {
	if tgws, ok := sectionPayload[*inventory.TGWAttachmentsData](result, inventory.SectionTransitGateway); ok {
		for _, att := range tgws.Attachments {
			n := graph.Node(att.TransitGatewayID)
			n.Label("Transit Gateway\\n" + att.TransitGatewayID)
			n.Attr("shape", "diamond")
			e := graph.Edge(clusterAnchor(cluster, result), n)
			e.Label(att.TransitGatewayAttachmentID)
		}
	}

	if vgws, ok := sectionPayload[*inventory.VPNGatewaysData](result, inventory.SectionVPNGateways); ok {
		for _, vgw := range vgws.VPNGateways {
			n := graph.Node(vgw.VPNGatewayID)
			n.Label("VPN Gateway\\n" + vgw.VPNGatewayID)
			n.Attr("shape", "diamond")
			graph.Edge(clusterAnchor(cluster, result), n)
		}
	}

	if vpns, ok := sectionPayload[*inventory.VPNConnectionsData](result, inventory.SectionVPNConnections); ok {
		for _, vpn := range vpns.VPNConnections {
			if vpn.GatewayID == nil {
				continue
			}
			n := graph.Node(vpn.VPNConnectionID)
			n.Label(fmt.Sprintf("VPN\\n%s\\n%d/%d tunnels up",
				vpn.VPNConnectionID, vpn.TunnelsUp, len(vpn.VGWTelemetry)))
			n.Attr("shape", "ellipse")
			if !vpn.AllTunnelsUp {
				n.Attr("color", "red")
			}
			graph.Edge(graph.Node(*vpn.GatewayID), n)
		}
	}
}

// clusterAnchor returns a stable node inside the VPC cluster to hang
// VPC-level edges on.
func clusterAnchor(cluster *dot.Graph, result *inventory.CollectionResult) dot.Node {
	n := cluster.Node(result.VPCID)
	n.Attr("shape", "plaintext")
	return n
}

func sectionPayload[T inventory.SectionData](result *inventory.CollectionResult, section string) (T, bool) {
	var zero T
	sectionResult, ok := result.Section(section)
	if !ok || !sectionResult.Success {
		return zero, false
	}
	data, ok := sectionResult.Data.(T)
	return data, ok
}
