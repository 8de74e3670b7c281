// Package awsquery implements the AWS-backed query service used by the
// collectors. It wraps the EC2 and Direct Connect SDK clients with error
// classification and an optional read-through response cache.
package awsquery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/directconnect"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog/log"

	"github.com/netscribe/vpcrecon/reportcache"
)

// Options configures a Client.
type Options struct {
	// Profile is the shared-credentials profile. Empty means the default
	// credential chain.
	Profile string

	// Region overrides the region from the profile or environment.
	Region string

	// Cache, when non-nil, short-circuits repeated describe calls.
	Cache *reportcache.Cache

	// CacheTTL bounds how long cached responses are reused.
	CacheTTL time.Duration
}

// Client is the production QueryService. It is safe for concurrent use; the
// underlying SDK clients and the bbolt cache both are.
type Client struct {
	ec2     *ec2.Client
	dx      *directconnect.Client
	region  string
	profile string
	cache   *reportcache.Cache
	ttl     time.Duration
}

// New loads AWS configuration for the given profile and region and builds
// the service clients.
func New(ctx context.Context, opts Options) (*Client, error) {
	loadOpts := []func(*config.LoadOptions) error{}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if cfg.Region == "" {
		return nil, errors.New("no AWS region configured: set --region, AWS_REGION, or a profile default")
	}

	log.Info().Str("profile", opts.Profile).Str("region", cfg.Region).Msg("initialized AWS clients")

	return &Client{
		ec2:     ec2.NewFromConfig(cfg),
		dx:      directconnect.NewFromConfig(cfg),
		region:  cfg.Region,
		profile: opts.Profile,
		cache:   opts.Cache,
		ttl:     opts.CacheTTL,
	}, nil
}

// Region returns the resolved AWS region.
func (c *Client) Region() string { return c.region }

// Profile returns the profile name the client was built with.
func (c *Client) Profile() string { return c.profile }

// wrapAPIError surfaces the AWS error code so section errors in the report
// say InvalidVpcID.NotFound instead of a generic SDK message chain.
func wrapAPIError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s failed (%s): %s", op, apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return fmt.Errorf("%s failed: %w", op, err)
}

// cacheKey builds a stable key from the operation name, region, and the
// JSON form of the request input.
func (c *Client) cacheKey(op string, in any) string {
	params, err := json.Marshal(in)
	if err != nil {
		params = []byte("{}")
	}
	return fmt.Sprintf("%s:%s:%s", op, c.region, params)
}

// cached runs fn with read-through caching when a cache is configured.
func cached[T any](ctx context.Context, c *Client, op string, in any, fn func(context.Context) (*T, error)) (*T, error) {
	if c.cache == nil {
		out, err := fn(ctx)
		if err != nil {
			return nil, wrapAPIError(op, err)
		}
		return out, nil
	}

	key := c.cacheKey(op, in)
	var hit T
	if c.cache.Get(key, &hit) {
		log.Debug().Str("op", op).Msg("cache hit")
		return &hit, nil
	}

	out, err := fn(ctx)
	if err != nil {
		return nil, wrapAPIError(op, err)
	}
	if err := c.cache.Set(key, out, c.ttl); err != nil {
		log.Warn().Err(err).Str("op", op).Msg("failed to cache response")
	}
	return out, nil
}

func (c *Client) DescribeVpcs(ctx context.Context, in *ec2.DescribeVpcsInput) (*ec2.DescribeVpcsOutput, error) {
	return cached(ctx, c, "DescribeVpcs", in, func(ctx context.Context) (*ec2.DescribeVpcsOutput, error) {
		return c.ec2.DescribeVpcs(ctx, in)
	})
}

func (c *Client) DescribeVpcAttribute(ctx context.Context, in *ec2.DescribeVpcAttributeInput) (*ec2.DescribeVpcAttributeOutput, error) {
	return cached(ctx, c, "DescribeVpcAttribute", in, func(ctx context.Context) (*ec2.DescribeVpcAttributeOutput, error) {
		return c.ec2.DescribeVpcAttribute(ctx, in)
	})
}

func (c *Client) DescribeSubnets(ctx context.Context, in *ec2.DescribeSubnetsInput) (*ec2.DescribeSubnetsOutput, error) {
	return cached(ctx, c, "DescribeSubnets", in, func(ctx context.Context) (*ec2.DescribeSubnetsOutput, error) {
		return c.ec2.DescribeSubnets(ctx, in)
	})
}

func (c *Client) DescribeRouteTables(ctx context.Context, in *ec2.DescribeRouteTablesInput) (*ec2.DescribeRouteTablesOutput, error) {
	return cached(ctx, c, "DescribeRouteTables", in, func(ctx context.Context) (*ec2.DescribeRouteTablesOutput, error) {
		return c.ec2.DescribeRouteTables(ctx, in)
	})
}

func (c *Client) DescribeSecurityGroups(ctx context.Context, in *ec2.DescribeSecurityGroupsInput) (*ec2.DescribeSecurityGroupsOutput, error) {
	return cached(ctx, c, "DescribeSecurityGroups", in, func(ctx context.Context) (*ec2.DescribeSecurityGroupsOutput, error) {
		return c.ec2.DescribeSecurityGroups(ctx, in)
	})
}

func (c *Client) DescribeNetworkAcls(ctx context.Context, in *ec2.DescribeNetworkAclsInput) (*ec2.DescribeNetworkAclsOutput, error) {
	return cached(ctx, c, "DescribeNetworkAcls", in, func(ctx context.Context) (*ec2.DescribeNetworkAclsOutput, error) {
		return c.ec2.DescribeNetworkAcls(ctx, in)
	})
}

func (c *Client) DescribeInternetGateways(ctx context.Context, in *ec2.DescribeInternetGatewaysInput) (*ec2.DescribeInternetGatewaysOutput, error) {
	return cached(ctx, c, "DescribeInternetGateways", in, func(ctx context.Context) (*ec2.DescribeInternetGatewaysOutput, error) {
		return c.ec2.DescribeInternetGateways(ctx, in)
	})
}

func (c *Client) DescribeNatGateways(ctx context.Context, in *ec2.DescribeNatGatewaysInput) (*ec2.DescribeNatGatewaysOutput, error) {
	return cached(ctx, c, "DescribeNatGateways", in, func(ctx context.Context) (*ec2.DescribeNatGatewaysOutput, error) {
		return c.ec2.DescribeNatGateways(ctx, in)
	})
}

func (c *Client) DescribeAddresses(ctx context.Context, in *ec2.DescribeAddressesInput) (*ec2.DescribeAddressesOutput, error) {
	return cached(ctx, c, "DescribeAddresses", in, func(ctx context.Context) (*ec2.DescribeAddressesOutput, error) {
		return c.ec2.DescribeAddresses(ctx, in)
	})
}

func (c *Client) DescribeVpcEndpoints(ctx context.Context, in *ec2.DescribeVpcEndpointsInput) (*ec2.DescribeVpcEndpointsOutput, error) {
	return cached(ctx, c, "DescribeVpcEndpoints", in, func(ctx context.Context) (*ec2.DescribeVpcEndpointsOutput, error) {
		return c.ec2.DescribeVpcEndpoints(ctx, in)
	})
}

func (c *Client) DescribeVpcPeeringConnections(ctx context.Context, in *ec2.DescribeVpcPeeringConnectionsInput) (*ec2.DescribeVpcPeeringConnectionsOutput, error) {
	return cached(ctx, c, "DescribeVpcPeeringConnections", in, func(ctx context.Context) (*ec2.DescribeVpcPeeringConnectionsOutput, error) {
		return c.ec2.DescribeVpcPeeringConnections(ctx, in)
	})
}

func (c *Client) DescribeTransitGatewayVpcAttachments(ctx context.Context, in *ec2.DescribeTransitGatewayVpcAttachmentsInput) (*ec2.DescribeTransitGatewayVpcAttachmentsOutput, error) {
	return cached(ctx, c, "DescribeTransitGatewayVpcAttachments", in, func(ctx context.Context) (*ec2.DescribeTransitGatewayVpcAttachmentsOutput, error) {
		return c.ec2.DescribeTransitGatewayVpcAttachments(ctx, in)
	})
}

func (c *Client) DescribeVpnConnections(ctx context.Context, in *ec2.DescribeVpnConnectionsInput) (*ec2.DescribeVpnConnectionsOutput, error) {
	return cached(ctx, c, "DescribeVpnConnections", in, func(ctx context.Context) (*ec2.DescribeVpnConnectionsOutput, error) {
		return c.ec2.DescribeVpnConnections(ctx, in)
	})
}

func (c *Client) DescribeCustomerGateways(ctx context.Context, in *ec2.DescribeCustomerGatewaysInput) (*ec2.DescribeCustomerGatewaysOutput, error) {
	return cached(ctx, c, "DescribeCustomerGateways", in, func(ctx context.Context) (*ec2.DescribeCustomerGatewaysOutput, error) {
		return c.ec2.DescribeCustomerGateways(ctx, in)
	})
}

func (c *Client) DescribeVpnGateways(ctx context.Context, in *ec2.DescribeVpnGatewaysInput) (*ec2.DescribeVpnGatewaysOutput, error) {
	return cached(ctx, c, "DescribeVpnGateways", in, func(ctx context.Context) (*ec2.DescribeVpnGatewaysOutput, error) {
		return c.ec2.DescribeVpnGateways(ctx, in)
	})
}

func (c *Client) DescribeDhcpOptions(ctx context.Context, in *ec2.DescribeDhcpOptionsInput) (*ec2.DescribeDhcpOptionsOutput, error) {
	return cached(ctx, c, "DescribeDhcpOptions", in, func(ctx context.Context) (*ec2.DescribeDhcpOptionsOutput, error) {
		return c.ec2.DescribeDhcpOptions(ctx, in)
	})
}

func (c *Client) DescribeFlowLogs(ctx context.Context, in *ec2.DescribeFlowLogsInput) (*ec2.DescribeFlowLogsOutput, error) {
	return cached(ctx, c, "DescribeFlowLogs", in, func(ctx context.Context) (*ec2.DescribeFlowLogsOutput, error) {
		return c.ec2.DescribeFlowLogs(ctx, in)
	})
}

func (c *Client) DescribeNetworkInterfaces(ctx context.Context, in *ec2.DescribeNetworkInterfacesInput) (*ec2.DescribeNetworkInterfacesOutput, error) {
	return cached(ctx, c, "DescribeNetworkInterfaces", in, func(ctx context.Context) (*ec2.DescribeNetworkInterfacesOutput, error) {
		return c.ec2.DescribeNetworkInterfaces(ctx, in)
	})
}

func (c *Client) DescribeVirtualInterfaces(ctx context.Context, in *directconnect.DescribeVirtualInterfacesInput) (*directconnect.DescribeVirtualInterfacesOutput, error) {
	return cached(ctx, c, "DescribeVirtualInterfaces", in, func(ctx context.Context) (*directconnect.DescribeVirtualInterfacesOutput, error) {
		return c.dx.DescribeVirtualInterfaces(ctx, in)
	})
}
