package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Redis            RedisConfig
	DB               DBConfig
	StatementTimeout time.Duration
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
}

// NodeConfig identifies one branch: its database, its branch id and the
// tables its menu exposes.
type NodeConfig struct {
	Key       string
	Hostnames []string
	DBName    string
	Role      string
	BranchID  int32
	Tables    []string
}

var Nodes = map[string]NodeConfig{
	"GUAYAQUIL": {
		Key:       "GUAYAQUIL",
		Hostnames: []string{"MiniPC"},
		DBName:    "techstore_guayaquil",
		Role:      "Publisher (Main office)",
		BranchID:  1,
		Tables: []string{
			"branches", "products", "inventory",
			"clients", "employees", "invoices", "invoice_details",
		},
	},
	// The Quito branch does not manage employees; its menu omits the table.
	"QUITO": {
		Key:       "QUITO",
		Hostnames: []string{"LAPTOP"},
		DBName:    "techstore_quito",
		Role:      "Subscriber (Branch)",
		BranchID:  2,
		Tables: []string{
			"branches", "products", "inventory",
			"clients", "invoices", "invoice_details",
		},
	},
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	timeoutMs, _ := strconv.Atoi(getEnv("STATEMENT_TIMEOUT_MS", "5000"))

	return Config{
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
		},
		StatementTimeout: time.Duration(timeoutMs) * time.Millisecond,
	}
}

// CurrentNode resolves the branch this machine belongs to by hostname.
// NODE_KEY overrides detection; unknown machines fall back to the main
// office node.
func CurrentNode() NodeConfig {
	if key := getEnv("NODE_KEY", ""); key != "" {
		if node, ok := Nodes[strings.ToUpper(key)]; ok {
			log.Printf("Node configuration loaded for %s (NODE_KEY)", node.Key)
			return node
		}
		log.Printf("NODE_KEY %q not recognized, falling back to hostname detection", key)
	}

	hostname, err := os.Hostname()
	if err != nil {
		log.Printf("Could not read hostname: %v, using GUAYAQUIL by default", err)
		return Nodes["GUAYAQUIL"]
	}

	for _, node := range Nodes {
		for _, h := range node.Hostnames {
			if strings.EqualFold(h, hostname) {
				log.Printf("Node configuration loaded for %s", node.Key)
				return node
			}
		}
	}

	log.Printf("Machine %q not recognized, using GUAYAQUIL by default", hostname)
	return Nodes["GUAYAQUIL"]
}

// DSN builds the connection string for one branch database.
func (c DBConfig) DSN(dbName string) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.Host, c.User, c.Password, dbName, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
