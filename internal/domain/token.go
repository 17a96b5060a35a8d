package domain

// DraftToken is the user's input to the creation workflow.
// It is consumed once and never stored as is.
type DraftToken struct {
	Name        string
	Symbol      string
	Description string // optional
	Decimals    uint8
	// InitialSupply is recorded with the token but not minted by creation.
	InitialSupply uint64
	Image         Image
}

// Image is an uploaded image blob.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Empty reports whether the image carries no data.
func (i Image) Empty() bool {
	return len(i.Data) == 0
}

// UploadedMetadata is the off-chain JSON document the metadata URI points to.
type UploadedMetadata struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// TokenRecord is a successfully created Token-2022 mint.
// Corresponds to tokens table in PostgreSQL.
type TokenRecord struct {
	Mint          string `json:"mint"`  // PRIMARY KEY, mint address
	Owner         string `json:"owner"` // wallet that paid and holds mint authority
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	Description   string `json:"description,omitempty"`
	MetadataURI   string `json:"metadata_uri"`
	ImageURI      string `json:"image_uri"`
	Decimals      uint8  `json:"decimals"`
	InitialSupply uint64 `json:"initial_supply"`
	Signature     string `json:"signature"`  // creation transaction signature
	CreatedAt     int64  `json:"created_at"` // Unix timestamp in milliseconds
}

// MintRecord is one confirmed MintTo into the owner's token account.
// Corresponds to mints table in PostgreSQL.
type MintRecord struct {
	Signature      string `json:"signature"` // PRIMARY KEY
	Mint           string `json:"mint"`      // FK to tokens
	Owner          string `json:"owner"`
	TokenAccount   string `json:"token_account"`   // associated token account that received the units
	Amount         string `json:"amount"`          // amount as entered, in whole tokens
	RawAmount      uint64 `json:"raw_amount"`      // amount * 10^decimals
	CreatedAccount bool   `json:"created_account"` // transaction also created the token account
	CreatedAt      int64  `json:"created_at"`      // Unix timestamp in milliseconds
}
