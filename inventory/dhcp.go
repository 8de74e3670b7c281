package inventory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/rs/zerolog/log"
)

// DHCPOptionsData is the "dhcp_options" section payload. A VPC without a
// DHCP options set produces an empty success payload rather than an error.
type DHCPOptionsData struct {
	DHCPOptionsID      *string               `json:"dhcp_options_id" yaml:"dhcp_options_id"`
	OwnerID            *string               `json:"owner_id,omitempty" yaml:"owner_id,omitempty"`
	Configurations     map[string][]string   `json:"configurations" yaml:"configurations"`
	DomainName         []string              `json:"domain_name,omitempty" yaml:"domain_name,omitempty"`
	DomainNameServers  []string              `json:"domain_name_servers,omitempty" yaml:"domain_name_servers,omitempty"`
	NTPServers         []string              `json:"ntp_servers,omitempty" yaml:"ntp_servers,omitempty"`
	NetBIOSNameServers []string              `json:"netbios_name_servers,omitempty" yaml:"netbios_name_servers,omitempty"`
	NetBIOSNodeType    []string              `json:"netbios_node_type,omitempty" yaml:"netbios_node_type,omitempty"`
	Tags               []Tag                 `json:"tags,omitempty" yaml:"tags,omitempty"`
	Name               *string               `json:"name,omitempty" yaml:"name,omitempty"`
	Raw                *ec2types.DhcpOptions `json:"raw_data" yaml:"raw_data"`
}

func (*DHCPOptionsData) sectionData() {}

// FetchDHCPOptions collects the DHCP options set referenced by the VPC.
// The options set ID comes from the VPC details collected up front.
func FetchDHCPOptions(ctx context.Context, q QueryService, dhcpOptionsID string) (*DHCPOptionsData, error) {
	if dhcpOptionsID == "" {
		return &DHCPOptionsData{Configurations: map[string][]string{}}, nil
	}

	out, err := q.DescribeDhcpOptions(ctx, &ec2.DescribeDhcpOptionsInput{
		DhcpOptionsIds: []string{dhcpOptionsID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe dhcp options %s: %w", dhcpOptionsID, err)
	}
	if len(out.DhcpOptions) == 0 {
		return &DHCPOptionsData{
			DHCPOptionsID:  aws.String(dhcpOptionsID),
			Configurations: map[string][]string{},
		}, nil
	}

	opts := out.DhcpOptions[0]
	configurations := make(map[string][]string, len(opts.DhcpConfigurations))
	for _, config := range opts.DhcpConfigurations {
		values := make([]string, 0, len(config.Values))
		for _, value := range config.Values {
			values = append(values, aws.ToString(value.Value))
		}
		configurations[aws.ToString(config.Key)] = values
	}

	log.Debug().Str("dhcp_options_id", dhcpOptionsID).Int("configurations", len(configurations)).Msg("collected dhcp options")

	return &DHCPOptionsData{
		DHCPOptionsID:      opts.DhcpOptionsId,
		OwnerID:            opts.OwnerId,
		Configurations:     configurations,
		DomainName:         configurations["domain-name"],
		DomainNameServers:  configurations["domain-name-servers"],
		NTPServers:         configurations["ntp-servers"],
		NetBIOSNameServers: configurations["netbios-name-servers"],
		NetBIOSNodeType:    configurations["netbios-node-type"],
		Tags:               convertTags(opts.Tags),
		Name:               nameFromTags(opts.Tags),
		Raw:                &opts,
	}, nil
}
