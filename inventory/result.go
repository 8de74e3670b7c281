package inventory

// Section names in canonical collection order. The order matters only for
// the sequential collector and for renderers that walk sections in a stable
// order; the result itself is keyed by name.
const (
	SectionVPC               = "vpc"
	SectionVPCAttributes     = "vpc_attributes"
	SectionSubnets           = "subnets"
	SectionRouteTables       = "route_tables"
	SectionSecurityGroups    = "security_groups"
	SectionNetworkACLs       = "network_acls"
	SectionInternetGateways  = "internet_gateways"
	SectionNATGateways       = "nat_gateways"
	SectionElasticIPs        = "elastic_ips"
	SectionVPCEndpoints      = "vpc_endpoints"
	SectionVPCPeering        = "vpc_peering"
	SectionTransitGateway    = "transit_gateway_attachments"
	SectionVPNConnections    = "vpn_connections"
	SectionCustomerGateways  = "customer_gateways"
	SectionVPNGateways       = "vpn_gateways"
	SectionDHCPOptions       = "dhcp_options"
	SectionFlowLogs          = "flow_logs"
	SectionNetworkInterfaces = "network_interfaces"
	SectionDirectConnectVIFs = "direct_connect_vifs"
)

// AllSections lists every known section in collection order.
func AllSections() []string {
	return []string{
		SectionVPC,
		SectionVPCAttributes,
		SectionSubnets,
		SectionRouteTables,
		SectionSecurityGroups,
		SectionNetworkACLs,
		SectionInternetGateways,
		SectionNATGateways,
		SectionElasticIPs,
		SectionVPCEndpoints,
		SectionVPCPeering,
		SectionTransitGateway,
		SectionVPNConnections,
		SectionCustomerGateways,
		SectionVPNGateways,
		SectionDHCPOptions,
		SectionFlowLogs,
		SectionNetworkInterfaces,
		SectionDirectConnectVIFs,
	}
}

// SectionData is implemented by every per-section payload type.
type SectionData interface {
	sectionData()
}

// SectionResult wraps one section's outcome. Exactly one of Data or Error is
// set, selected by Success. Renderers must check Success before reading Data.
type SectionResult struct {
	Success bool        `json:"success" yaml:"success"`
	Data    SectionData `json:"data,omitempty" yaml:"data,omitempty"`
	Error   string      `json:"error,omitempty" yaml:"error,omitempty"`
}

func sectionOK(data SectionData) SectionResult {
	return SectionResult{Success: true, Data: data}
}

func sectionFailed(err error) SectionResult {
	return SectionResult{Success: false, Error: err.Error()}
}

// CollectionResult is the root document produced by one collection run.
// It is fully populated before being returned and is not mutated afterwards.
type CollectionResult struct {
	VPCID    string                   `json:"vpc_id" yaml:"vpc_id"`
	Region   string                   `json:"region" yaml:"region"`
	Profile  string                   `json:"profile" yaml:"profile"`
	Sections map[string]SectionResult `json:"sections" yaml:"sections"`
}

// Section returns the result for a section name, if collected.
func (r *CollectionResult) Section(name string) (SectionResult, bool) {
	res, ok := r.Sections[name]
	return res, ok
}
