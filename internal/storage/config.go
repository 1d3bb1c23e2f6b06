package storage

import "os"

// DynamoMode represents the DynamoDB connection mode
type DynamoMode string

const (
	DynamoModeLocal DynamoMode = "local"
	DynamoModeAWS   DynamoMode = "aws"
	DynamoModeNone  DynamoMode = "none"
)

// DynamoConfig holds DynamoDB configuration
type DynamoConfig struct {
	Mode               DynamoMode
	Endpoint           string // for local mode
	Region             string
	ConversationsTable string
	MessagesTable      string
	PeopleTable        string
}

// LoadDynamoConfig loads DynamoDB config from environment
func LoadDynamoConfig() DynamoConfig {
	mode := DynamoMode(getEnv("DYNAMO_MODE", "none"))
	if mode != DynamoModeLocal && mode != DynamoModeAWS {
		mode = DynamoModeNone
	}

	return DynamoConfig{
		Mode:               mode,
		Endpoint:           getEnv("DYNAMO_ENDPOINT", "http://localhost:8000"),
		Region:             getEnv("DYNAMO_REGION", "ap-northeast-2"),
		ConversationsTable: getEnv("DYNAMO_USER_CHATS_TABLE", "chat-analyzer-user-chats"),
		MessagesTable:      getEnv("DYNAMO_MESSAGES_TABLE", "chat-analyzer-messages"),
		PeopleTable:        getEnv("DYNAMO_MANAGERS_TABLE", "chat-analyzer-managers"),
	}
}

// SQLTables names the SQL tables holding each dataset
type SQLTables struct {
	Conversations string
	Messages      string
	People        string
}

// LoadSQLTables loads SQL table names from environment
func LoadSQLTables() SQLTables {
	return SQLTables{
		Conversations: getEnv("SQL_USER_CHATS_TABLE", "user_chats"),
		Messages:      getEnv("SQL_MESSAGES_TABLE", "messages"),
		People:        getEnv("SQL_MANAGERS_TABLE", "managers"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
