// Package cost estimates the monthly spend of the networking resources in a
// collection result. Rates are us-east-1 list prices for the hourly charges
// only; data processing is out of scope.
package cost

import (
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/netscribe/vpcrecon/inventory"
)

// hoursPerMonth is the averaged month length used by AWS pricing examples.
var hoursPerMonth = decimal.NewFromInt(730)

// Hourly rates in USD.
var (
	natGatewayHourly        = decimal.RequireFromString("0.045")
	vpnConnectionHourly     = decimal.RequireFromString("0.05")
	tgwAttachmentHourly     = decimal.RequireFromString("0.05")
	interfaceEndpointHourly = decimal.RequireFromString("0.01")
	unassociatedEIPHourly   = decimal.RequireFromString("0.005")
)

// avgAZsPerEndpoint approximates a typical interface endpoint deployment.
var avgAZsPerEndpoint = decimal.NewFromInt(2)

// Driver is one resource family contributing to the monthly total, largest
// first in Breakdown.Drivers.
type Driver struct {
	Resource    string          `json:"resource" yaml:"resource"`
	MonthlyCost decimal.Decimal `json:"monthly_cost" yaml:"monthly_cost"`
	Description string          `json:"description" yaml:"description"`
}

// Breakdown is the cost estimate for one VPC.
type Breakdown struct {
	VPCID            string                     `json:"vpc_id" yaml:"vpc_id"`
	Region           string                     `json:"region" yaml:"region"`
	MonthlyCosts     map[string]decimal.Decimal `json:"monthly_costs" yaml:"monthly_costs"`
	TotalMonthlyCost decimal.Decimal            `json:"total_monthly_cost" yaml:"total_monthly_cost"`
	Drivers          []Driver                   `json:"cost_drivers" yaml:"cost_drivers"`
	Recommendations  []string                   `json:"recommendations" yaml:"recommendations"`
}

// Estimate computes the monthly cost breakdown from collected sections.
// Sections that were not collected or failed contribute nothing.
func Estimate(result *inventory.CollectionResult) *Breakdown {
	b := &Breakdown{
		VPCID:        result.VPCID,
		Region:       result.Region,
		MonthlyCosts: make(map[string]decimal.Decimal),
	}

	b.add("nat_gateways", "NAT Gateways",
		"NAT Gateway hourly charges + data processing",
		monthly(natGatewayHourly, natGatewayCount(result)))

	b.add("vpn_connections", "VPN Connections",
		"VPN connection hourly charges",
		monthly(vpnConnectionHourly, vpnConnectionCount(result)))

	b.add("transit_gateway", "Transit Gateway",
		"TGW attachment hourly charges + data processing",
		monthly(tgwAttachmentHourly, tgwAttachmentCount(result)))

	b.add("vpc_endpoints", "VPC Endpoints",
		"Interface endpoint hourly charges",
		monthly(interfaceEndpointHourly, interfaceEndpointCount(result)).Mul(avgAZsPerEndpoint))

	b.add("elastic_ips", "Elastic IPs",
		"Unassociated Elastic IP charges",
		monthly(unassociatedEIPHourly, unassociatedEIPCount(result)))

	sort.SliceStable(b.Drivers, func(i, j int) bool {
		return b.Drivers[i].MonthlyCost.GreaterThan(b.Drivers[j].MonthlyCost)
	})

	b.Recommendations = recommendations(b)

	log.Info().Str("vpc_id", b.VPCID).Str("total_monthly_cost", b.TotalMonthlyCost.StringFixed(2)).
		Msg("cost estimate complete")

	return b
}

func (b *Breakdown) add(key, resource, description string, cost decimal.Decimal) {
	if !cost.IsPositive() {
		return
	}
	b.MonthlyCosts[key] = cost
	b.TotalMonthlyCost = b.TotalMonthlyCost.Add(cost)
	b.Drivers = append(b.Drivers, Driver{
		Resource:    resource,
		MonthlyCost: cost,
		Description: description,
	})
}

func monthly(hourlyRate decimal.Decimal, count int) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return hourlyRate.Mul(hoursPerMonth).Mul(decimal.NewFromInt(int64(count)))
}

func natGatewayCount(result *inventory.CollectionResult) int {
	if data, ok := sectionData[*inventory.NATGatewaysData](result, inventory.SectionNATGateways); ok {
		return len(data.NATGateways)
	}
	return 0
}

func vpnConnectionCount(result *inventory.CollectionResult) int {
	if data, ok := sectionData[*inventory.VPNConnectionsData](result, inventory.SectionVPNConnections); ok {
		return len(data.VPNConnections)
	}
	return 0
}

func tgwAttachmentCount(result *inventory.CollectionResult) int {
	if data, ok := sectionData[*inventory.TGWAttachmentsData](result, inventory.SectionTransitGateway); ok {
		return len(data.Attachments)
	}
	return 0
}

// interfaceEndpointCount counts Interface endpoints only; Gateway endpoints
// are free.
func interfaceEndpointCount(result *inventory.CollectionResult) int {
	data, ok := sectionData[*inventory.VPCEndpointsData](result, inventory.SectionVPCEndpoints)
	if !ok {
		return 0
	}
	count := 0
	for _, ep := range data.VPCEndpoints {
		if ep.VPCEndpointType == "Interface" {
			count++
		}
	}
	return count
}

func unassociatedEIPCount(result *inventory.CollectionResult) int {
	data, ok := sectionData[*inventory.ElasticIPsData](result, inventory.SectionElasticIPs)
	if !ok {
		return 0
	}
	count := 0
	for _, eip := range data.ElasticIPs {
		if !eip.IsAssociated {
			count++
		}
	}
	return count
}

// sectionData extracts a successful section payload of the wanted type.
func sectionData[T inventory.SectionData](result *inventory.CollectionResult, section string) (T, bool) {
	var zero T
	sectionResult, ok := result.Section(section)
	if !ok || !sectionResult.Success {
		return zero, false
	}
	data, ok := sectionResult.Data.(T)
	return data, ok
}

// Thresholds for recommendations, in USD per month.
var (
	natRecommendThreshold      = decimal.NewFromInt(100)
	endpointRecommendThreshold = decimal.NewFromInt(50)
	totalRecommendThreshold    = decimal.NewFromInt(200)
)

func recommendations(b *Breakdown) []string {
	var recs []string

	if cost, ok := b.MonthlyCosts["nat_gateways"]; ok && cost.GreaterThan(natRecommendThreshold) {
		recs = append(recs, "Consider consolidating NAT Gateways across multiple subnets in the same AZ to reduce costs")
	}
	if _, ok := b.MonthlyCosts["vpn_connections"]; ok {
		recs = append(recs, "Review VPN connections - consider using Transit Gateway for multiple VPN connections")
	}
	if _, ok := b.MonthlyCosts["elastic_ips"]; ok {
		recs = append(recs, "Release unassociated Elastic IPs to avoid unnecessary charges")
	}
	if cost, ok := b.MonthlyCosts["vpc_endpoints"]; ok && cost.GreaterThan(endpointRecommendThreshold) {
		recs = append(recs, "Review VPC Endpoints - ensure all interface endpoints are actively used")
	}
	if b.TotalMonthlyCost.GreaterThan(totalRecommendThreshold) {
		recs = append(recs, "Consider using AWS Cost Explorer for detailed cost analysis and optimization")
	}

	return recs
}
