// internal/platform/di/container.go
package di

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	httpin "minter/internal/adapters/in/http"
	dbadapter "minter/internal/adapters/out/db"
	fsadapter "minter/internal/adapters/out/firestore"
	gcsadapter "minter/internal/adapters/out/gcs"
	mailadapter "minter/internal/adapters/out/mail"
	"minter/internal/adapters/out/memory"
	app "minter/internal/application/issuance"
	issuancedom "minter/internal/domain/issuance"
	appcfg "minter/internal/infra/config"
	"minter/internal/infra/database"
	"minter/internal/infra/ledgersim"
	solanainfra "minter/internal/infra/solana"
)

// Container は外部クライアントと usecase をまとめて保持します。
//
// 必須: ledger（LEDGER_MODE）、記録ストア（ISSUANCE_STORE）
// 任意: GCS（METADATA_BUCKET）、SendGrid（SENDGRID_API_KEY）
type Container struct {
	Config *appcfg.Config

	// Clients (owned; Close-managed)
	Firestore *firestore.Client
	GCS       *storage.Client
	DB        *database.DB

	Authority  app.Keypair
	Ledger     app.LedgerFactory
	Simulated  *ledgersim.Ledger // LEDGER_MODE=simulated のときだけ
	Repository issuancedom.RecordRepository

	IssuanceUC *app.IssuanceUsecase
}

// NewContainer は cfg から依存を組み立てます。
func NewContainer(ctx context.Context, cfg *appcfg.Config) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("di: config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, w := range cfg.Warnings() {
		log.Printf("[di] WARN: %s", w)
	}

	c := &Container{Config: cfg}
	opts := clientOptions(cfg)

	// 1) mint authority
	authority, err := loadAuthority(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c.Authority = authority

	// 2) ledger
	if err := c.buildLedger(); err != nil {
		return nil, err
	}

	// 3) issuance record store
	if err := c.buildRepository(ctx, opts); err != nil {
		c.Close()
		return nil, err
	}

	// 4) usecase
	c.IssuanceUC = app.NewIssuanceUsecase(authority, solanainfra.KeyGenerator{}, solanainfra.Resolver{}, c.Ledger)
	c.IssuanceUC.SetRepository(c.Repository)

	// 5) Optional: off-chain metadata (GCS)
	if bucket := strings.TrimSpace(cfg.MetadataBucket); bucket != "" {
		gcs, err := storage.NewClient(ctx, opts...)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("di: storage.NewClient failed: %w", err)
		}
		c.GCS = gcs
		c.IssuanceUC.SetMetadataPublisher(gcsadapter.NewMetadataPublisherGCS(gcs, bucket))
		log.Printf("[di] metadata publisher enabled bucket=%s", bucket)
	}

	// 6) Optional: SendGrid notifier
	if key := strings.TrimSpace(cfg.SendGridAPIKey); key != "" {
		client := mailadapter.NewSendGridClient(key, "minter")
		c.IssuanceUC.SetNotifier(mailadapter.NewIssuanceNotifier(client, cfg.NotifyFrom, cfg.NotifyTo))
		log.Printf("[di] issuance notifier enabled")
	}

	log.Printf("[di] container ready ledger=%s store=%s authority=%s",
		cfg.LedgerMode, cfg.IssuanceStore, authority.Address)
	return c, nil
}

// RouterDeps は HTTP ルータに渡す依存を返します。
func (c *Container) RouterDeps() httpin.RouterDeps {
	return httpin.RouterDeps{
		IssuanceUC:     c.IssuanceUC,
		AllowedOrigins: c.Config.CORSAllowedOrigins,
	}
}

// Close は保持しているクライアントを閉じます。
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.Firestore != nil {
		if err := c.Firestore.Close(); err != nil {
			log.Printf("[di] firestore close: %v", err)
		}
		c.Firestore = nil
	}
	if c.GCS != nil {
		if err := c.GCS.Close(); err != nil {
			log.Printf("[di] gcs close: %v", err)
		}
		c.GCS = nil
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Printf("[di] db close: %v", err)
		}
		c.DB = nil
	}
}

// ------------------------------------------------------------
// builders
// ------------------------------------------------------------

func clientOptions(cfg *appcfg.Config) []option.ClientOption {
	credFile := strings.TrimSpace(cfg.FirestoreCredentialsFile)
	if credFile == "" {
		credFile = strings.TrimSpace(cfg.GCPCreds)
	}
	if credFile == "" {
		return nil
	}
	log.Printf("[di] using credentials file for GCP clients")
	return []option.ClientOption{option.WithCredentialsFile(credFile)}
}

// loadAuthority は mint authority の鍵を読み込みます。
// simulated モードで鍵が指定されていなければ使い捨ての鍵を生成します。
func loadAuthority(ctx context.Context, cfg *appcfg.Config) (app.Keypair, error) {
	if secret := strings.TrimSpace(cfg.SolanaMintKeySecret); secret != "" {
		return solanainfra.LoadMintAuthority(ctx, solanainfra.SecretVersionName(cfg.GCPProjectID, secret))
	}
	if file := strings.TrimSpace(cfg.SolanaMintKeyFile); file != "" {
		return solanainfra.LoadMintAuthorityFromFile(file)
	}
	if cfg.LedgerMode == appcfg.LedgerSimulated {
		kp, err := solanainfra.KeyGenerator{}.NewKeypair()
		if err != nil {
			return app.Keypair{}, err
		}
		log.Printf("[di] WARN: using ephemeral mint authority %s (simulated ledger)", kp.Address)
		return kp, nil
	}
	return app.Keypair{}, solanainfra.ErrMintKeyNotConfigured
}

func (c *Container) buildLedger() error {
	switch c.Config.LedgerMode {
	case appcfg.LedgerSolana:
		c.Ledger = solanainfra.NewFactory(solanainfra.NewBlocktoRPC(c.Config.SolanaRPCURL))
		log.Printf("[di] ledger=solana rpc=%s", c.Config.SolanaRPCURL)
		return nil

	case appcfg.LedgerSimulated:
		l, err := ledgersim.New(ledgersim.Programs{
			Token:         solanainfra.TokenProgramID,
			System:        solanainfra.SystemProgramID,
			TokenMetadata: solanainfra.TokenMetadataProgramID,
		})
		if err != nil {
			return err
		}
		l.Airdrop(c.Authority.Address, c.Config.SimulatedAirdrop)
		c.Simulated = l
		c.Ledger = ledgersim.NewFactory(l)
		log.Printf("[di] ledger=simulated airdrop=%d", c.Config.SimulatedAirdrop)
		return nil

	default:
		return fmt.Errorf("di: unknown ledger mode %q", c.Config.LedgerMode)
	}
}

func (c *Container) buildRepository(ctx context.Context, opts []option.ClientOption) error {
	switch c.Config.IssuanceStore {
	case appcfg.StoreMemory:
		c.Repository = memory.NewIssuanceRepository()
		return nil

	case appcfg.StoreFirestore:
		fb, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: c.Config.FirestoreProjectID}, opts...)
		if err != nil {
			return fmt.Errorf("di: firebase.NewApp failed: %w", err)
		}
		fs, err := fb.Firestore(ctx)
		if err != nil {
			return fmt.Errorf("di: firestore client failed (project=%s): %w", c.Config.FirestoreProjectID, err)
		}
		c.Firestore = fs
		c.Repository = fsadapter.NewIssuanceRepositoryFS(fs, c.Config.IssuanceCollection)
		log.Printf("[di] Firestore connected project=%s collection=%s", c.Config.FirestoreProjectID, c.Config.IssuanceCollection)
		return nil

	case appcfg.StorePostgres:
		db, err := database.NewConnection(ctx, c.Config.DatabaseURL)
		if err != nil {
			return err
		}
		c.DB = db
		repo := dbadapter.NewIssuanceRepositoryPG(db.Client)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		c.Repository = repo
		return nil

	default:
		return fmt.Errorf("di: unknown issuance store %q", c.Config.IssuanceStore)
	}
}
