package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/rs/zerolog/log"
)

// FlowLog is the normalized record for one VPC flow log.
type FlowLog struct {
	FlowLogID                string     `json:"flow_log_id" yaml:"flow_log_id"`
	FlowLogStatus            string     `json:"flow_log_status" yaml:"flow_log_status"`
	ResourceID               string     `json:"resource_id" yaml:"resource_id"`
	TrafficType              string     `json:"traffic_type" yaml:"traffic_type"`
	LogDestinationType       string     `json:"log_destination_type" yaml:"log_destination_type"`
	LogDestination           *string    `json:"log_destination" yaml:"log_destination"`
	LogFormat                *string    `json:"log_format" yaml:"log_format"`
	LogGroupName             *string    `json:"log_group_name" yaml:"log_group_name"`
	DeliverLogsStatus        *string    `json:"deliver_logs_status" yaml:"deliver_logs_status"`
	DeliverLogsErrorMessage  *string    `json:"deliver_logs_error_message" yaml:"deliver_logs_error_message"`
	DeliverLogsPermissionARN *string    `json:"deliver_logs_permission_arn" yaml:"deliver_logs_permission_arn"`
	MaxAggregationInterval   *int32     `json:"max_aggregation_interval" yaml:"max_aggregation_interval"`
	CreationTime             *time.Time `json:"creation_time" yaml:"creation_time"`
	FileFormat               *string    `json:"file_format" yaml:"file_format"`
	HiveCompatiblePartitions bool       `json:"hive_compatible_partitions" yaml:"hive_compatible_partitions"`
	PerHourPartition         bool       `json:"per_hour_partition" yaml:"per_hour_partition"`
	Tags                     []Tag      `json:"tags" yaml:"tags"`
	Name                     *string    `json:"name" yaml:"name"`
}

// FlowLogsData is the "flow_logs" section payload.
type FlowLogsData struct {
	TotalCount int                `json:"total_count" yaml:"total_count"`
	FlowLogs   []FlowLog          `json:"flow_logs" yaml:"flow_logs"`
	Raw        []ec2types.FlowLog `json:"raw_data" yaml:"raw_data"`
}

func (*FlowLogsData) sectionData() {}

// FetchFlowLogs collects flow logs attached directly to the VPC.
func FetchFlowLogs(ctx context.Context, q QueryService, vpcID string) (*FlowLogsData, error) {
	out, err := q.DescribeFlowLogs(ctx, &ec2.DescribeFlowLogsInput{
		Filter: []ec2types.Filter{{
			Name:   aws.String("resource-id"),
			Values: []string{vpcID},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe flow logs: %w", err)
	}

	flowLogs := make([]FlowLog, 0, len(out.FlowLogs))
	for _, fl := range out.FlowLogs {
		rec := FlowLog{
			FlowLogID:                aws.ToString(fl.FlowLogId),
			FlowLogStatus:            aws.ToString(fl.FlowLogStatus),
			ResourceID:               aws.ToString(fl.ResourceId),
			TrafficType:              string(fl.TrafficType),
			LogDestinationType:       string(fl.LogDestinationType),
			LogDestination:           fl.LogDestination,
			LogFormat:                fl.LogFormat,
			LogGroupName:             fl.LogGroupName,
			DeliverLogsStatus:        fl.DeliverLogsStatus,
			DeliverLogsErrorMessage:  fl.DeliverLogsErrorMessage,
			DeliverLogsPermissionARN: fl.DeliverLogsPermissionArn,
			MaxAggregationInterval:   fl.MaxAggregationInterval,
			CreationTime:             fl.CreationTime,
			Tags:                     convertTags(fl.Tags),
			Name:                     nameFromTags(fl.Tags),
		}
		if dest := fl.DestinationOptions; dest != nil {
			if dest.FileFormat != "" {
				rec.FileFormat = aws.String(string(dest.FileFormat))
			}
			rec.HiveCompatiblePartitions = aws.ToBool(dest.HiveCompatiblePartitions)
			rec.PerHourPartition = aws.ToBool(dest.PerHourPartition)
		}
		flowLogs = append(flowLogs, rec)
	}

	log.Debug().Str("vpc_id", vpcID).Int("count", len(flowLogs)).Msg("collected flow logs")

	return &FlowLogsData{
		TotalCount: len(flowLogs),
		FlowLogs:   flowLogs,
		Raw:        out.FlowLogs,
	}, nil
}
