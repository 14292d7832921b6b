// Package execution adapts signed-order construction and REST submission
// to the Polymarket CLOB into the core's ports.OrderClient contract.
package execution

import (
	"context"
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/polymarket/go-order-utils/pkg/builder"
	"github.com/polymarket/go-order-utils/pkg/model"
	"go.uber.org/zap"

	"github.com/mselser95/polymarket-arb/internal/ports"
	"github.com/mselser95/polymarket-arb/pkg/types"
)

const zeroAddress = "0x0000000000000000000000000000000000000000"

// OrderClient handles order submission to the Polymarket CLOB.
type OrderClient struct {
	apiKey        string
	secret        string
	passphrase    string
	privateKey    *ecdsa.PrivateKey
	address       string // EOA address (signer)
	proxyAddress  string // Proxy address (maker/funder)
	signatureType model.SignatureType
	orderBuilder  builder.ExchangeOrderBuilder
	logger        *zap.Logger
}

// OrderClientConfig holds configuration for the order client.
type OrderClientConfig struct {
	APIKey        string
	Secret        string
	Passphrase    string
	PrivateKey    string
	Address       string
	ProxyAddress  string
	SignatureType int
	Logger        *zap.Logger
}

// NewOrderClient creates a new order client.
func NewOrderClient(cfg *OrderClientConfig) (*OrderClient, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	address := cfg.Address
	if address == "" {
		publicKey := privateKey.Public()
		publicKeyECDSA, _ := publicKey.(*ecdsa.PublicKey)
		address = crypto.PubkeyToAddress(*publicKeyECDSA).Hex()
	}

	chainID := big.NewInt(137) // Polygon mainnet
	orderBuilder := builder.NewExchangeOrderBuilderImpl(chainID, nil)

	return &OrderClient{
		apiKey:        cfg.APIKey,
		secret:        cfg.Secret,
		passphrase:    cfg.Passphrase,
		privateKey:    privateKey,
		address:       address,
		proxyAddress:  cfg.ProxyAddress,
		signatureType: model.SignatureType(cfg.SignatureType),
		orderBuilder:  orderBuilder,
		logger:        cfg.Logger,
	}, nil
}

// GetMakerAddress returns the maker address (proxy if set, otherwise EOA).
func (c *OrderClient) GetMakerAddress() string {
	if c.proxyAddress != "" {
		return c.proxyAddress
	}
	return c.address
}

// GetSignerAddress returns the signer address (always the EOA).
func (c *OrderClient) GetSignerAddress() string {
	return c.address
}

// GetSignatureType returns the signature type.
func (c *OrderClient) GetSignatureType() model.SignatureType {
	return c.signatureType
}

// SubmitBuy implements ports.OrderClient: it buys sizeContracts shares of
// token at priceCents each.
func (c *OrderClient) SubmitBuy(ctx context.Context, token string, priceCents, sizeContracts int) (ports.FillResult, error) {
	return c.submitLeg(ctx, token, priceCents, sizeContracts, model.BUY)
}

// SubmitSell implements ports.OrderClient: it sells sizeContracts shares of
// token at priceCents each, used to flatten an unmatched leg.
func (c *OrderClient) SubmitSell(ctx context.Context, token string, priceCents, sizeContracts int) (ports.FillResult, error) {
	return c.submitLeg(ctx, token, priceCents, sizeContracts, model.SELL)
}

func (c *OrderClient) submitLeg(ctx context.Context, token string, priceCents, sizeContracts int, side model.Side) (ports.FillResult, error) {
	sideLabel := "buy"
	if side == model.SELL {
		sideLabel = "sell"
	}

	orderData := c.buildOrderData(token, priceCents, sizeContracts, side)

	resp, err := c.PlaceSingleOrder(ctx, orderData)
	if err != nil {
		OrdersSubmittedTotal.WithLabelValues(sideLabel, "transport_error").Inc()
		return ports.FillResult{}, err
	}
	if !resp.Success {
		OrdersSubmittedTotal.WithLabelValues(sideLabel, "rejected").Inc()
		return ports.FillResult{}, fmt.Errorf("order rejected: %s", resp.ErrorMsg)
	}

	OrdersSubmittedTotal.WithLabelValues(sideLabel, "filled").Inc()
	return ports.FillResult{
		FilledContracts: sizeContracts,
		CostCents:       priceCents * sizeContracts,
		OrderID:         resp.OrderID,
	}, nil
}

// buildOrderData constructs the OrderData for one leg. BUY orders pay USDC
// (maker amount) for tokens (taker amount); SELL orders reverse the two.
func (c *OrderClient) buildOrderData(token string, priceCents, sizeContracts int, side model.Side) *model.OrderData {
	usd := float64(priceCents) * float64(sizeContracts) / 100.0
	tokens := float64(sizeContracts)

	makerAmount, takerAmount := usdToRawAmount(usd), usdToRawAmount(tokens)
	if side == model.SELL {
		makerAmount, takerAmount = usdToRawAmount(tokens), usdToRawAmount(usd)
	}

	return &model.OrderData{
		Maker:         c.GetMakerAddress(),
		Taker:         zeroAddress,
		TokenId:       token,
		MakerAmount:   makerAmount,
		TakerAmount:   takerAmount,
		Side:          side,
		FeeRateBps:    "0",
		Nonce:         "0",
		Signer:        c.GetSignerAddress(),
		Expiration:    "0",
		SignatureType: c.signatureType,
	}
}

// PlaceSingleOrder builds, signs, and submits a single order.
func (c *OrderClient) PlaceSingleOrder(ctx context.Context, orderData *model.OrderData) (*types.OrderSubmissionResponse, error) {
	signedOrder, err := c.orderBuilder.BuildSignedOrder(c.privateKey, orderData, model.CTFExchange)
	if err != nil {
		return nil, fmt.Errorf("build order: %w", err)
	}

	sideStr := "BUY"
	if orderData.Side == model.SELL {
		sideStr = "SELL"
	}
	c.logger.Info("single-order-built",
		zap.String("maker", orderData.Maker),
		zap.String("signer", orderData.Signer),
		zap.String("token_id", orderData.TokenId),
		zap.String("side", sideStr))

	resp, err := c.submitOrder(ctx, signedOrder)
	if err != nil {
		return nil, fmt.Errorf("submit order: %w", err)
	}
	return resp, nil
}

// convertToOrderJSON converts a signed order to JSON format.
func (c *OrderClient) convertToOrderJSON(order *model.SignedOrder) types.SignedOrderJSON {
	sideStr := "BUY"
	if order.Side.Uint64() == uint64(model.SELL) {
		sideStr = "SELL"
	}

	return types.SignedOrderJSON{
		Salt:          order.Salt.Int64(),
		Maker:         order.Maker.Hex(),
		Signer:        order.Signer.Hex(),
		Taker:         order.Taker.Hex(),
		TokenID:       order.TokenId.String(),
		MakerAmount:   order.MakerAmount.String(),
		TakerAmount:   order.TakerAmount.String(),
		Side:          sideStr,
		Expiration:    order.Expiration.String(),
		Nonce:         order.Nonce.String(),
		FeeRateBps:    order.FeeRateBps.String(),
		SignatureType: int(order.SignatureType.Int64()),
		Signature:     "0x" + common.Bytes2Hex(order.Signature),
	}
}

func (c *OrderClient) submitOrder(ctx context.Context, order *model.SignedOrder) (*types.OrderSubmissionResponse, error) {
	start := time.Now()
	defer func() { OrderSubmissionDurationSeconds.Observe(time.Since(start).Seconds()) }()

	jsonOrder := c.convertToOrderJSON(order)

	orderRequest := types.OrderSubmissionRequest{
		Order:     jsonOrder,
		Owner:     c.apiKey,
		OrderType: "GTC",
	}

	reqBody, err := json.Marshal(orderRequest)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	method := "POST"
	requestPath := "/order"

	signaturePayload := timestamp + method + requestPath + string(reqBody)

	secretBytes, err := base64.URLEncoding.DecodeString(c.secret)
	if err != nil {
		return nil, fmt.Errorf("decode secret: %w", err)
	}

	h := hmac.New(sha256.New, secretBytes)
	h.Write([]byte(signaturePayload))
	signature := base64.URLEncoding.EncodeToString(h.Sum(nil))

	url := "https://clob.polymarket.com" + requestPath
	req, err := http.NewRequestWithContext(ctx, method, url, strings.NewReader(string(reqBody)))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("POLY_API_KEY", c.apiKey)
	req.Header.Set("POLY_SIGNATURE", signature)
	req.Header.Set("POLY_TIMESTAMP", timestamp)
	req.Header.Set("POLY_PASSPHRASE", c.passphrase)
	req.Header.Set("POLY_ADDRESS", c.address)

	client := &http.Client{Timeout: 30 * time.Second}
	httpResp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK && httpResp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, string(body))
	}

	var resp types.OrderSubmissionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &resp, nil
}

func usdToRawAmount(usd float64) string {
	return fmt.Sprintf("%d", int64(usd*1000000))
}
