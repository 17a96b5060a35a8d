package launchpad

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	solanago "github.com/gagliardetto/solana-go"

	"token-launchpad/internal/domain"
	"token-launchpad/internal/token2022"
	"token-launchpad/internal/wallet"
)

// createAssembly is a creation transaction co-signed by the mint identity.
type createAssembly struct {
	tx    *solanago.Transaction
	token *domain.TokenRecord
}

// CreateToken uploads the draft's image and metadata, creates the Token-2022
// mint with embedded metadata, and records it. The wallet must be able to
// sign; a Sender is preferred over a Signer.
func (s *Service) CreateToken(ctx context.Context, w wallet.Wallet, draft domain.DraftToken) (*domain.TokenRecord, error) {
	draft = normalizeDraft(draft)
	if err := validateDraft(draft); err != nil {
		return nil, err
	}
	if !wallet.Connected(w) {
		return nil, ErrWalletNotConnected
	}
	sender, canSend := wallet.AsSender(w)
	signer, canSign := wallet.AsSigner(w)
	if !canSend && !canSign {
		return nil, fmt.Errorf("%w: create needs SignTransaction or SignAndSendTransaction", ErrWalletCapability)
	}

	owner := w.PublicKey()
	wf := s.begin(domain.WorkflowCreate, owner.String())

	asm, err := s.assembleCreate(ctx, wf, owner, draft)
	if err != nil {
		return nil, wf.fail(ctx, err)
	}
	if err := wf.advance(domain.StateAwaitingSignature); err != nil {
		return nil, wf.fail(ctx, err)
	}

	var signature string
	if canSend {
		sig, err := sender.SignAndSendTransaction(ctx, asm.tx)
		if err != nil {
			return nil, wf.fail(ctx, &SubmitError{Stage: domain.StateAwaitingSignature, Err: err})
		}
		if err := wf.advance(domain.StateSubmitting); err != nil {
			return nil, wf.fail(ctx, err)
		}
		signature = sig.String()
	} else {
		if err := signer.SignTransaction(ctx, asm.tx); err != nil {
			return nil, wf.fail(ctx, &SubmitError{Stage: domain.StateAwaitingSignature, Err: err})
		}
		if err := wf.advance(domain.StateSubmitting); err != nil {
			return nil, wf.fail(ctx, err)
		}
		if signature, err = s.send(ctx, asm.tx); err != nil {
			return nil, wf.fail(ctx, err)
		}
	}

	if err := s.waitConfirmed(ctx, signature); err != nil {
		return nil, wf.fail(ctx, &SubmitError{Stage: domain.StateSubmitting, Signature: signature, Err: err})
	}

	return s.finishCreate(ctx, wf, asm.token, signature)
}

// finishCreate publishes a confirmed creation and records the token, which
// is what makes minting reachable for it.
func (s *Service) finishCreate(ctx context.Context, wf *workflow, token *domain.TokenRecord, signature string) (*domain.TokenRecord, error) {
	if err := wf.confirm(ctx, signature); err != nil {
		return nil, err
	}

	token.Signature = signature
	token.CreatedAt = s.now().UnixMilli()

	start := time.Now()
	err := s.tokens.Insert(ctx, token)
	s.metrics.RecordDBQuery("tokens", "insert", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("record token %s: %w", token.Mint, err)
	}

	s.logger.Printf("token mint created at %s", token.Mint)
	return token, nil
}

// assembleCreate runs the uploading and assembling stages.
func (s *Service) assembleCreate(ctx context.Context, wf *workflow, owner solanago.PublicKey, draft domain.DraftToken) (*createAssembly, error) {
	if s.pinner == nil {
		return nil, fmt.Errorf("create token: no pinner configured")
	}

	if err := wf.advance(domain.StateUploading); err != nil {
		return nil, err
	}
	imageURL, metadataURL, err := s.upload(ctx, draft)
	if err != nil {
		return nil, err
	}

	if err := wf.advance(domain.StateAssembling); err != nil {
		return nil, err
	}

	mintKey, err := s.newMintKey()
	if err != nil {
		return nil, fmt.Errorf("generate mint keypair: %w", err)
	}
	mint := mintKey.PublicKey()
	wf.mint = mint.String()

	instructions, err := s.createInstructions(ctx, owner, mint, draft, metadataURL)
	if err != nil {
		return nil, err
	}

	tx, err := s.newTransaction(ctx, instructions, owner)
	if err != nil {
		return nil, err
	}

	// The mint identity signs here and is then dropped.
	_, err = tx.PartialSign(func(key solanago.PublicKey) *solanago.PrivateKey {
		if key.Equals(mint) {
			return &mintKey
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("co-sign with mint keypair: %w", err)
	}

	return &createAssembly{
		tx: tx,
		token: &domain.TokenRecord{
			Mint:          mint.String(),
			Owner:         owner.String(),
			Name:          draft.Name,
			Symbol:        draft.Symbol,
			Description:   draft.Description,
			MetadataURI:   metadataURL,
			ImageURI:      imageURL,
			Decimals:      draft.Decimals,
			InitialSupply: draft.InitialSupply,
		},
	}, nil
}

// upload pins the image, then the metadata document pointing at it.
// An image failure stops before the metadata upload.
func (s *Service) upload(ctx context.Context, draft domain.DraftToken) (imageURL, metadataURL string, err error) {
	img := draft.Image
	imagePin, err := s.pinner.PinFile(ctx, img.Filename, img.ContentType, img.Data)
	s.metrics.RecordUpload("image", len(img.Data), err)
	if err != nil {
		return "", "", &UploadError{Artifact: "image", Err: err}
	}

	metadata := domain.UploadedMetadata{
		Name:        draft.Name,
		Symbol:      draft.Symbol,
		Description: draft.Description,
		Image:       imagePin.URL,
	}
	metadataPin, err := s.pinner.PinJSON(ctx, metadata)
	if err != nil {
		s.metrics.RecordUpload("metadata", 0, err)
		return "", "", &UploadError{Artifact: "metadata", Err: err}
	}
	s.metrics.RecordUpload("metadata", int(metadataPin.Size), nil)

	return imagePin.URL, metadataPin.URL, nil
}

// createInstructions returns the four creation instructions in order.
func (s *Service) createInstructions(ctx context.Context, owner, mint solanago.PublicKey, draft domain.DraftToken, uri string) ([]solanago.Instruction, error) {
	rentSize := token2022.RentSize(draft.Name, draft.Symbol, uri)
	lamports, err := s.rpc.GetMinimumBalanceForRentExemption(ctx, rentSize)
	if err != nil {
		return nil, fmt.Errorf("get rent exemption for %d bytes: %w", rentSize, err)
	}

	pointer, err := token2022.InitializeMetadataPointer(mint, owner, mint)
	if err != nil {
		return nil, err
	}
	initMint, err := token2022.InitializeMint(mint, draft.Decimals, owner, nil)
	if err != nil {
		return nil, err
	}
	initMetadata, err := token2022.InitializeTokenMetadata(mint, owner, mint, owner, draft.Name, draft.Symbol, uri)
	if err != nil {
		return nil, err
	}

	return []solanago.Instruction{
		token2022.CreateMintAccount(owner, mint, lamports),
		pointer,
		initMint,
		initMetadata,
	}, nil
}

func normalizeDraft(d domain.DraftToken) domain.DraftToken {
	d.Name = strings.TrimSpace(d.Name)
	d.Symbol = strings.TrimSpace(d.Symbol)
	d.Description = strings.TrimSpace(d.Description)
	if d.Image.Filename == "" {
		d.Image.Filename = "image"
	}
	if d.Image.ContentType == "" && !d.Image.Empty() {
		d.Image.ContentType = http.DetectContentType(d.Image.Data)
	}
	return d
}

func validateDraft(d domain.DraftToken) error {
	switch {
	case d.Name == "":
		return missingField("name")
	case d.Symbol == "":
		return missingField("symbol")
	case d.Image.Empty():
		return missingField("image")
	}
	return nil
}
