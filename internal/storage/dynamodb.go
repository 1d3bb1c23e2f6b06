package storage

import (
	"context"
	"fmt"

	"github.com/Helper-Yoon/chat-analyzer/internal/types"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
)

// DynamoSource reads the three datasets from DynamoDB tables
type DynamoSource struct {
	client dynamodb.ScanAPIClient
	config DynamoConfig
	logger zerolog.Logger
}

// NewDynamoSource creates a new DynamoDB source
func NewDynamoSource(ctx context.Context, cfg DynamoConfig, logger zerolog.Logger) (*DynamoSource, error) {
	var client *dynamodb.Client

	if cfg.Mode == DynamoModeLocal {
		// For local mode, build the client directly without LoadDefaultConfig.
		// LoadDefaultConfig probes the EC2 IMDS endpoint which hangs on EC2
		// instances when static credentials are intended.
		client = dynamodb.New(dynamodb.Options{
			Region:       cfg.Region,
			BaseEndpoint: aws.String(cfg.Endpoint),
			Credentials:  credentials.NewStaticCredentialsProvider("local", "local", ""),
		})
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client = dynamodb.NewFromConfig(awsCfg)
	}

	// Create tables in local mode
	if cfg.Mode == DynamoModeLocal {
		if err := CreateTablesIfNotExist(ctx, client, cfg, logger); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("mode", string(cfg.Mode)).
		Str("region", cfg.Region).
		Msg("DynamoDB source initialized")

	return newDynamoSource(client, cfg, logger), nil
}

func newDynamoSource(client dynamodb.ScanAPIClient, cfg DynamoConfig, logger zerolog.Logger) *DynamoSource {
	return &DynamoSource{client: client, config: cfg, logger: logger}
}

// LoadTables scans the three tables. Only the required attributes are
// projected; a missing attribute reads as an empty cell.
func (s *DynamoSource) LoadTables(ctx context.Context) ([]types.RawTable, error) {
	tables := []struct {
		marker  string
		table   string
		columns []string
	}{
		{types.MarkerConversations, s.config.ConversationsTable, conversationColumns},
		{types.MarkerMessages, s.config.MessagesTable, messageColumns},
		{types.MarkerPeople, s.config.PeopleTable, personColumns},
	}

	out := make([]types.RawTable, 0, len(tables))
	for _, tbl := range tables {
		t, err := s.scanTable(ctx, tbl.table, tbl.columns)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", tbl.table, err)
		}
		t.Name = tableName(tbl.marker, tbl.table)
		out = append(out, t)

		s.logger.Debug().Str("table", tbl.table).Int("rows", len(t.Rows)).Msg("table scanned")
	}
	return out, nil
}

func (s *DynamoSource) scanTable(ctx context.Context, table string, columns []string) (types.RawTable, error) {
	names := make([]expression.NameBuilder, 0, len(columns))
	for _, c := range columns {
		names = append(names, expression.Name(c))
	}
	proj := expression.NamesList(names[0], names[1:]...)
	expr, err := expression.NewBuilder().WithProjection(proj).Build()
	if err != nil {
		return types.RawTable{}, fmt.Errorf("failed to build expression: %w", err)
	}

	t := types.RawTable{Header: columns}
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName:                aws.String(table),
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return types.RawTable{}, err
		}
		for _, item := range page.Items {
			row := make([]string, len(columns))
			for i, c := range columns {
				if av, ok := item[c]; ok {
					row[i] = cellString(av)
				}
			}
			t.Rows = append(t.Rows, row)
		}
	}
	return t, nil
}

// cellString renders an attribute the way a spreadsheet cell would hold it
func cellString(av dbtypes.AttributeValue) string {
	switch v := av.(type) {
	case *dbtypes.AttributeValueMemberS:
		return v.Value
	case *dbtypes.AttributeValueMemberN:
		return v.Value
	case *dbtypes.AttributeValueMemberBOOL:
		return fmt.Sprint(v.Value)
	case *dbtypes.AttributeValueMemberNULL:
		return ""
	}

	var decoded any
	if err := attributevalue.Unmarshal(av, &decoded); err != nil {
		return ""
	}
	return fmt.Sprint(decoded)
}
