// internal/application/issuance/usecase.go
package issuance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	issuancedom "minter/internal/domain/issuance"
)

var (
	ErrUsecaseNotConfigured = errors.New("issuance usecase: not configured")
	ErrAuthorityMissing     = errors.New("issuance usecase: authority keypair is missing")
)

// ============================================================
// IssuanceUsecase 本体
// ============================================================

type IssuanceUsecase struct {
	authority Keypair

	keys     KeypairSource
	resolver BundleResolver
	ledgers  LedgerFactory

	// 任意依存（Setterで後から差し込む）
	publisher MetadataPublisher
	notifier  Notifier
	repo      issuancedom.RecordRepository

	now   func() time.Time
	newID func() string
}

// NewIssuanceUsecase は IssuanceUsecase のコンストラクタです。
// publisher / notifier / repo は任意依存です。
func NewIssuanceUsecase(
	authority Keypair,
	keys KeypairSource,
	resolver BundleResolver,
	ledgers LedgerFactory,
) *IssuanceUsecase {
	return &IssuanceUsecase{
		authority: authority,
		keys:      keys,
		resolver:  resolver,
		ledgers:   ledgers,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (u *IssuanceUsecase) SetMetadataPublisher(p MetadataPublisher) {
	if u == nil {
		return
	}
	u.publisher = p
}

func (u *IssuanceUsecase) SetNotifier(n Notifier) {
	if u == nil {
		return
	}
	u.notifier = n
}

func (u *IssuanceUsecase) SetRepository(r issuancedom.RecordRepository) {
	if u == nil {
		return
	}
	u.repo = r
}

// Authority は発行に使う authority のアドレスです。
func (u *IssuanceUsecase) Authority() issuancedom.Address {
	if u == nil {
		return ""
	}
	return u.authority.Address
}

// ============================================================
// Entry points
// ============================================================

// MintFungibleToken は Fungible 専用のエントリポイントです。
func (u *IssuanceUsecase) MintFungibleToken(ctx context.Context, v issuancedom.Variant) (issuancedom.Record, error) {
	return u.issueAs(ctx, issuancedom.KindFungible, v)
}

// MintFungibleAsset は FungibleAsset 専用のエントリポイントです。
func (u *IssuanceUsecase) MintFungibleAsset(ctx context.Context, v issuancedom.Variant) (issuancedom.Record, error) {
	return u.issueAs(ctx, issuancedom.KindFungibleAsset, v)
}

// MintNonFungible は NonFungible 専用のエントリポイントです。
func (u *IssuanceUsecase) MintNonFungible(ctx context.Context, v issuancedom.Variant) (issuancedom.Record, error) {
	return u.issueAs(ctx, issuancedom.KindNonFungible, v)
}

// Issue は variant のタグで振り分けます。
func (u *IssuanceUsecase) Issue(ctx context.Context, v issuancedom.Variant) (issuancedom.Record, error) {
	if v == nil {
		return issuancedom.Record{}, fmt.Errorf("%w: variant is nil", issuancedom.ErrInvalidVariant)
	}
	return u.issue(ctx, v)
}

func (u *IssuanceUsecase) issueAs(ctx context.Context, want issuancedom.Kind, v issuancedom.Variant) (issuancedom.Record, error) {
	if v == nil {
		return issuancedom.Record{}, fmt.Errorf("%w: variant is nil", issuancedom.ErrInvalidVariant)
	}
	if v.Kind() != want {
		return issuancedom.Record{}, fmt.Errorf("%w: entry point %s received %s", issuancedom.ErrVariantMismatch, want, v.Kind())
	}
	return u.issue(ctx, v)
}

// ============================================================
// Queries
// ============================================================

func (u *IssuanceUsecase) GetByID(ctx context.Context, id string) (issuancedom.Record, error) {
	if u == nil || u.repo == nil {
		return issuancedom.Record{}, ErrUsecaseNotConfigured
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return issuancedom.Record{}, issuancedom.ErrInvalidRecordID
	}
	return u.repo.GetByID(ctx, id)
}

func (u *IssuanceUsecase) ListByMint(ctx context.Context, mint string) ([]issuancedom.Record, error) {
	if u == nil || u.repo == nil {
		return nil, ErrUsecaseNotConfigured
	}
	return u.repo.ListByMint(ctx, strings.TrimSpace(mint))
}

// ============================================================
// Flow
// ============================================================

func (u *IssuanceUsecase) issue(ctx context.Context, v issuancedom.Variant) (issuancedom.Record, error) {
	start := time.Now()
	if u == nil || u.keys == nil || u.resolver == nil || u.ledgers == nil {
		return issuancedom.Record{}, ErrUsecaseNotConfigured
	}
	if len(u.authority.PrivateKey) == 0 || u.authority.Address == "" {
		return issuancedom.Record{}, ErrAuthorityMissing
	}

	kind := v.Kind()
	log.Printf("[issuance_usecase] issue start kind=%s authority=%s", kind, maskShort(u.authority.Address.String()))

	// 0) ledger に触れる前の検証
	if err := issuancedom.Validate(v); err != nil {
		log.Printf("[issuance_usecase] issue abort reason=invalid_variant kind=%s err=%v", kind, err)
		return issuancedom.Record{}, err
	}

	// 1) mint アカウント鍵
	mintKey, err := u.keys.NewKeypair()
	if err != nil {
		return issuancedom.Record{}, fmt.Errorf("issuance: new mint keypair: %w", err)
	}

	// 2) metadataUri が空なら公開して確定する
	v, err = u.ensureURI(ctx, mintKey.Address, v)
	if err != nil {
		log.Printf("[issuance_usecase] issue abort reason=publish_failed kind=%s mint=%s err=%v",
			kind, maskShort(mintKey.Address.String()), err)
		return issuancedom.Record{}, err
	}

	// 3) 位置固定ハンドル列
	handles, err := u.resolver.Resolve(ctx, kind, mintKey.Address, u.authority.Address)
	if err != nil {
		return issuancedom.Record{}, fmt.Errorf("issuance: resolve bundle: %w", err)
	}

	// 4) セッション開始 → 構築（構築エラーは ledger 呼び出し前に返す）
	session, err := u.ledgers.Begin(ctx, u.authority, mintKey)
	if err != nil {
		return issuancedom.Record{}, fmt.Errorf("issuance: begin ledger session: %w", err)
	}
	orch, err := issuancedom.TryNew(handles, v, session)
	if err != nil {
		session.Discard()
		log.Printf("[issuance_usecase] issue abort reason=construction kind=%s err=%v", kind, err)
		return issuancedom.Record{}, err
	}

	// 5) パイプライン実行
	trace, runErr := orch.Run(ctx)
	rec := issuancedom.NewRecord(u.newID(), orch.Variant(), orch.Bundle(), trace, runErr, u.now())

	// 6) 確定 or 破棄
	if runErr != nil {
		session.Discard()
	} else {
		receipt, commitErr := session.Commit(ctx)
		switch {
		case commitErr != nil:
			runErr = fmt.Errorf("issuance: commit: %w", commitErr)
			rec.MarkFailed(runErr)
		case receipt.Simulated:
			rec.Signature = receipt.Signature
			rec.MarkSimulated(u.now())
		default:
			rec.MarkSubmitted(receipt.Signature, u.now())
		}
	}

	// 7) 永続化（失敗レコードも残す）
	if u.repo != nil {
		saved, err := u.repo.Save(ctx, rec)
		if err != nil {
			log.Printf("[issuance_usecase] record save failed id=%s err=%v", rec.ID, err)
			if runErr == nil {
				return rec, fmt.Errorf("issuance: save record: %w", err)
			}
		} else {
			rec = saved
		}
	}

	if runErr != nil {
		log.Printf("[issuance_usecase] issue failed id=%s kind=%s step=%s err=%v elapsed=%s",
			rec.ID, kind, rec.FailedStep, runErr, time.Since(start))
		return rec, runErr
	}

	// 8) 通知（失敗しても結果は変えない）
	if u.notifier != nil {
		if err := u.notifier.NotifyIssued(ctx, rec); err != nil {
			log.Printf("[issuance_usecase] notify failed id=%s err=%v", rec.ID, err)
		}
	}

	log.Printf("[issuance_usecase] issue ok id=%s kind=%s mint=%s status=%s sig=%s elapsed=%s",
		rec.ID, kind, maskShort(rec.MintAddress), rec.Status, maskShort(rec.Signature), time.Since(start))
	return rec, nil
}

func (u *IssuanceUsecase) ensureURI(ctx context.Context, mint issuancedom.Address, v issuancedom.Variant) (issuancedom.Variant, error) {
	d := issuancedom.Project(v)
	if strings.TrimSpace(d.URI) != "" || u.publisher == nil {
		return v, nil
	}
	uri, err := u.publisher.Publish(ctx, mint, d)
	if err != nil {
		return nil, fmt.Errorf("issuance: publish metadata: %w", err)
	}
	out, err := issuancedom.WithURI(v, uri)
	if err != nil {
		return nil, err
	}
	// 上限超過の URI はここで弾く
	if err := issuancedom.Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

func maskShort(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 10 {
		return s
	}
	return s[:4] + "***" + s[len(s)-4:]
}
