// internal/infra/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ISSUANCE_STORE の値
const (
	StoreMemory    = "memory"
	StoreFirestore = "firestore"
	StorePostgres  = "postgres"
)

// LEDGER_MODE の値
const (
	LedgerSimulated = "simulated"
	LedgerSolana    = "solana"
)

// Config はアプリケーション全体の環境変数設定を保持します。
type Config struct {
	Port               string
	CORSAllowedOrigins string

	// Solana
	LedgerMode          string
	SolanaRPCURL        string
	SolanaMintKeySecret string // Secret Manager の Version 名 or secret id
	SolanaMintKeyFile   string // ローカル開発用の keypair JSON
	SimulatedAirdrop    uint64 // simulated モードで authority に配る lamports

	// GCP
	GCPProjectID             string
	GCPCreds                 string
	FirestoreProjectID       string
	FirestoreCredentialsFile string
	MetadataBucket           string

	// issuance 記録
	IssuanceStore      string
	IssuanceCollection string
	DatabaseURL        string

	// 通知
	SendGridAPIKey string
	NotifyFrom     string
	NotifyTo       string
}

// Load は環境変数を読み込み Config を返します。
func Load() *Config {
	defaultProject := os.Getenv("GCP_PROJECT_ID")

	airdrop, err := strconv.ParseUint(getenvDefault("SIMULATED_AIRDROP_LAMPORTS", "100000000000"), 10, 64)
	if err != nil {
		airdrop = 0
	}

	return &Config{
		Port:               getenvDefault("PORT", "8080"),
		CORSAllowedOrigins: os.Getenv("CORS_ALLOWED_ORIGINS"),

		LedgerMode:          strings.ToLower(getenvDefault("LEDGER_MODE", LedgerSimulated)),
		SolanaRPCURL:        getenvDefault("SOLANA_RPC_URL", "https://api.devnet.solana.com"),
		SolanaMintKeySecret: os.Getenv("SOLANA_MINT_KEY_SECRET"),
		SolanaMintKeyFile:   os.Getenv("SOLANA_MINT_KEY_FILE"),
		SimulatedAirdrop:    airdrop,

		GCPProjectID:             defaultProject,
		GCPCreds:                 os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		MetadataBucket:           os.Getenv("METADATA_BUCKET"),

		IssuanceStore:      strings.ToLower(getenvDefault("ISSUANCE_STORE", StoreMemory)),
		IssuanceCollection: getenvDefault("ISSUANCE_COLLECTION", "issuances"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		NotifyFrom:     os.Getenv("NOTIFY_FROM"),
		NotifyTo:       os.Getenv("NOTIFY_TO"),
	}
}

// Validate performs hard validation.
// 任意機能（GCS / SendGrid）は空なら無効のまま許可します。
func (c *Config) Validate() error {
	switch c.IssuanceStore {
	case StoreMemory:
	case StoreFirestore:
		if strings.TrimSpace(c.FirestoreProjectID) == "" {
			return fmt.Errorf("config: ISSUANCE_STORE=firestore requires FIRESTORE_PROJECT_ID or GCP_PROJECT_ID")
		}
	case StorePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("config: ISSUANCE_STORE=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("config: unknown ISSUANCE_STORE %q", c.IssuanceStore)
	}

	switch c.LedgerMode {
	case LedgerSimulated:
	case LedgerSolana:
		if u := strings.TrimSpace(c.SolanaRPCURL); !(strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")) {
			return fmt.Errorf("config: SOLANA_RPC_URL must start with http:// or https:// (got %q)", u)
		}
		if strings.TrimSpace(c.SolanaMintKeySecret) == "" && strings.TrimSpace(c.SolanaMintKeyFile) == "" {
			return fmt.Errorf("config: LEDGER_MODE=solana requires SOLANA_MINT_KEY_SECRET or SOLANA_MINT_KEY_FILE")
		}
	default:
		return fmt.Errorf("config: unknown LEDGER_MODE %q", c.LedgerMode)
	}

	if strings.ContainsAny(c.MetadataBucket, " \t\r\n") {
		return fmt.Errorf("config: METADATA_BUCKET contains whitespace (got %q)", c.MetadataBucket)
	}
	if strings.TrimSpace(c.SendGridAPIKey) != "" && strings.TrimSpace(c.NotifyTo) == "" {
		return fmt.Errorf("config: SENDGRID_API_KEY is set but NOTIFY_TO is empty")
	}
	return nil
}

// Warnings は起動を止めない設定漏れを返します。
func (c *Config) Warnings() []string {
	var warns []string
	if c.MetadataBucket == "" {
		warns = append(warns, "METADATA_BUCKET is empty (requests without uri are issued with an empty uri)")
	}
	if c.SendGridAPIKey == "" {
		warns = append(warns, "SENDGRID_API_KEY is empty (issuance notifications disabled)")
	}
	if c.IssuanceStore == StoreMemory {
		warns = append(warns, "ISSUANCE_STORE=memory (records are lost on restart)")
	}
	return warns
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
