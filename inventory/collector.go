package inventory

import (
	"context"

	"github.com/rs/zerolog/log"
)

// sectionCollector fetches one section's payload.
type sectionCollector func(ctx context.Context) (SectionData, error)

// Options controls a collection run.
type Options struct {
	// Sections restricts collection to the named sections. Nil or empty
	// means all sections. Unknown names are ignored.
	Sections []string

	// Progress receives per-section events. May be nil.
	Progress ProgressSink
}

func (o Options) progress() ProgressSink {
	if o.Progress == nil {
		return nopProgress{}
	}
	return o.Progress
}

// Collect gathers the requested sections one at a time. The VPC details are
// fetched first: a VPC that cannot be described fails the whole run, and its
// DHCP options set ID feeds the dhcp_options section. Any other section
// failure is recorded in that section's result and does not stop the run.
func Collect(ctx context.Context, q QueryService, vpcID string, opts Options) (*CollectionResult, error) {
	details, err := FetchVPCDetails(ctx, q, vpcID)
	if err != nil {
		return nil, err
	}

	log.Info().Str("vpc_id", vpcID).Str("region", q.Region()).Msg("starting collection")

	collectors := buildCollectors(q, vpcID, details)
	progress := opts.progress()

	result := newCollectionResult(q, vpcID)
	for _, section := range selectSections(opts.Sections) {
		collector, ok := collectors[section]
		if !ok {
			continue
		}
		progress.SectionStarted(section)
		sectionResult := runSection(ctx, section, collector)
		progress.SectionFinished(section, sectionResult)
		result.Sections[section] = sectionResult
	}

	log.Info().Str("vpc_id", vpcID).Int("sections", len(result.Sections)).Msg("collection complete")
	return result, nil
}

func newCollectionResult(q QueryService, vpcID string) *CollectionResult {
	return &CollectionResult{
		VPCID:    vpcID,
		Region:   q.Region(),
		Profile:  q.Profile(),
		Sections: make(map[string]SectionResult),
	}
}

// selectSections returns the canonical-order subset of requested sections.
// The canonical order keeps sequential and concurrent runs deterministic.
func selectSections(requested []string) []string {
	if len(requested) == 0 {
		return AllSections()
	}
	want := make(map[string]bool, len(requested))
	for _, name := range requested {
		want[name] = true
	}
	selected := make([]string, 0, len(requested))
	for _, name := range AllSections() {
		if want[name] {
			selected = append(selected, name)
		}
	}
	return selected
}

func runSection(ctx context.Context, section string, collector sectionCollector) SectionResult {
	data, err := collector(ctx)
	if err != nil {
		log.Error().Err(err).Str("section", section).Msg("section collection failed")
		return sectionFailed(err)
	}
	return sectionOK(data)
}

// buildCollectors wires every section to its fetch function. The vpc section
// reuses the details fetched up front instead of describing the VPC again.
func buildCollectors(q QueryService, vpcID string, details *VPCDetails) map[string]sectionCollector {
	dhcpOptionsID := ""
	if details.DHCPOptionsID != nil {
		dhcpOptionsID = *details.DHCPOptionsID
	}

	return map[string]sectionCollector{
		SectionVPC: func(context.Context) (SectionData, error) {
			return details, nil
		},
		SectionVPCAttributes: func(ctx context.Context) (SectionData, error) {
			return FetchVPCAttributes(ctx, q, vpcID)
		},
		SectionSubnets: func(ctx context.Context) (SectionData, error) {
			return FetchSubnets(ctx, q, vpcID)
		},
		SectionRouteTables: func(ctx context.Context) (SectionData, error) {
			return FetchRouteTables(ctx, q, vpcID)
		},
		SectionSecurityGroups: func(ctx context.Context) (SectionData, error) {
			return FetchSecurityGroups(ctx, q, vpcID)
		},
		SectionNetworkACLs: func(ctx context.Context) (SectionData, error) {
			return FetchNetworkACLs(ctx, q, vpcID)
		},
		SectionInternetGateways: func(ctx context.Context) (SectionData, error) {
			return FetchInternetGateways(ctx, q, vpcID)
		},
		SectionNATGateways: func(ctx context.Context) (SectionData, error) {
			return FetchNATGateways(ctx, q, vpcID)
		},
		SectionElasticIPs: func(ctx context.Context) (SectionData, error) {
			return FetchElasticIPs(ctx, q, vpcID)
		},
		SectionVPCEndpoints: func(ctx context.Context) (SectionData, error) {
			return FetchVPCEndpoints(ctx, q, vpcID)
		},
		SectionVPCPeering: func(ctx context.Context) (SectionData, error) {
			return FetchPeeringConnections(ctx, q, vpcID)
		},
		SectionTransitGateway: func(ctx context.Context) (SectionData, error) {
			return FetchTGWAttachments(ctx, q, vpcID)
		},
		SectionVPNConnections: func(ctx context.Context) (SectionData, error) {
			return FetchVPNConnections(ctx, q, vpcID)
		},
		SectionCustomerGateways: func(ctx context.Context) (SectionData, error) {
			return FetchCustomerGateways(ctx, q, vpcID)
		},
		SectionVPNGateways: func(ctx context.Context) (SectionData, error) {
			return FetchVPNGateways(ctx, q, vpcID)
		},
		SectionDHCPOptions: func(ctx context.Context) (SectionData, error) {
			return FetchDHCPOptions(ctx, q, dhcpOptionsID)
		},
		SectionFlowLogs: func(ctx context.Context) (SectionData, error) {
			return FetchFlowLogs(ctx, q, vpcID)
		},
		SectionNetworkInterfaces: func(ctx context.Context) (SectionData, error) {
			return FetchNetworkInterfaces(ctx, q, vpcID)
		},
		SectionDirectConnectVIFs: func(ctx context.Context) (SectionData, error) {
			return FetchDirectConnectVIFs(ctx, q, vpcID)
		},
	}
}
