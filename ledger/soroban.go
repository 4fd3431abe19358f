package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
)

// SorobanClient is a minimal JSON-RPC client for the Soroban RPC methods the
// adapter needs: simulateTransaction (footprint + resource fee estimation),
// sendTransaction, and getTransaction (polling for inclusion). No corpus
// example imports a Soroban RPC package, so this talks JSON-RPC directly
// over net/http rather than inventing a third-party dependency.
type SorobanClient struct {
	URL        string
	HTTPClient *http.Client
}

// NewSorobanClient builds a client against the given RPC endpoint.
func NewSorobanClient(url string) *SorobanClient {
	return &SorobanClient{
		URL:        url,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *SorobanClient) call(ctx context.Context, method string, params any, out any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("soroban rpc %s: %w", method, err)
	}
	defer resp.Body.Close()

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("decode soroban rpc response: %w", err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("soroban rpc %s: %s (code %d)", method, rpcResp.Error.Message, rpcResp.Error.Code)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(rpcResp.Result, out)
}

// SimulationResult carries the pieces of simulateTransaction's response: the
// Soroban transaction data, which BuildContractTransferXDR applies onto the
// transaction before signing, and the minimum resource fee.
type SimulationResult struct {
	TransactionData xdr.SorobanTransactionData
	MinResourceFee  int64
}

func (c *SorobanClient) SimulateTransaction(ctx context.Context, tx *txnbuild.Transaction) (SimulationResult, error) {
	envelopeXDR, err := tx.Base64()
	if err != nil {
		return SimulationResult{}, fmt.Errorf("encode transaction for simulation: %w", err)
	}

	var result struct {
		TransactionData string `json:"transactionData"`
		MinResourceFee  string `json:"minResourceFee"`
		Error           string `json:"error"`
	}
	if err := c.call(ctx, "simulateTransaction", map[string]string{"transaction": envelopeXDR}, &result); err != nil {
		return SimulationResult{}, err
	}
	if result.Error != "" {
		return SimulationResult{}, fmt.Errorf("simulation failed: %s", result.Error)
	}

	var txData xdr.SorobanTransactionData
	if err := xdr.SafeUnmarshalBase64(result.TransactionData, &txData); err != nil {
		return SimulationResult{}, fmt.Errorf("decode simulated transaction data: %w", err)
	}

	var minFee int64
	if result.MinResourceFee != "" {
		minFee, err = strconv.ParseInt(result.MinResourceFee, 10, 64)
		if err != nil {
			return SimulationResult{}, fmt.Errorf("decode simulated min resource fee: %w", err)
		}
	}

	return SimulationResult{TransactionData: txData, MinResourceFee: minFee}, nil
}

// SendAndAwait submits a Soroban transaction and polls getTransaction until
// it reaches a terminal status or ctx is done, polling once per second.
func (c *SorobanClient) SendAndAwait(ctx context.Context, envelopeXDR string) (SubmitOutcome, error) {
	var sendResult struct {
		Hash   string `json:"hash"`
		Status string `json:"status"`
	}
	if err := c.call(ctx, "sendTransaction", map[string]string{"transaction": envelopeXDR}, &sendResult); err != nil {
		return SubmitOutcome{}, err
	}
	if sendResult.Status == "ERROR" {
		return SubmitOutcome{}, fmt.Errorf("soroban rejected transaction %s", sendResult.Hash)
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return SubmitOutcome{}, ctx.Err()
		case <-ticker.C:
			var getResult struct {
				Status         string `json:"status"`
				Ledger         uint32 `json:"ledger"`
				ResultXdr      string `json:"resultXdr"`
			}
			if err := c.call(ctx, "getTransaction", map[string]string{"hash": sendResult.Hash}, &getResult); err != nil {
				continue
			}
			switch getResult.Status {
			case "SUCCESS":
				return SubmitOutcome{
					Hash:           sendResult.Hash,
					Successful:     true,
					LedgerSequence: getResult.Ledger,
					ResultXDR:      getResult.ResultXdr,
				}, nil
			case "FAILED":
				return SubmitOutcome{Hash: sendResult.Hash, Successful: false, ResultXDR: getResult.ResultXdr}, nil
			}
		}
	}
}
