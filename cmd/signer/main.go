package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/service-ledger/internal/models"
	"github.com/ukydev/service-ledger/internal/signature"
)

// options are the command line settings; flags fall back to the environment.
type options struct {
	Key    string
	Domain string
	APIURL string
	Role   string
	Record uint64
	Submit bool
	SignIn bool
	NewKey bool
}

var errNoKey = errors.New("a private key is required: pass -key or set SIGNER_KEY")

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("signer", flag.ContinueOnError)
	fs.StringVar(&opts.Key, "key", os.Getenv("SIGNER_KEY"), "hex secp256k1 private key")
	fs.StringVar(&opts.Domain, "domain", getEnv("LEDGER_DOMAIN", signature.DefaultDomain), "ledger domain bound into signatures")
	fs.StringVar(&opts.APIURL, "api", getEnv("API_BASE_URL", "http://localhost:8080/api"), "API base URL")
	fs.StringVar(&opts.Role, "role", "user", "verifying role: brand or user")
	fs.Uint64Var(&opts.Record, "record", 0, "record id to verify")
	fs.BoolVar(&opts.Submit, "submit", false, "submit the signature to the API")
	fs.BoolVar(&opts.SignIn, "signin", false, "print a signed session request instead")
	fs.BoolVar(&opts.NewKey, "new-key", false, "generate a new private key and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

// signIn builds a session request signed at issuedAt.
func signIn(s *signature.Signer, issuedAt time.Time) models.SessionRequest {
	issued := issuedAt.Unix()
	return models.SessionRequest{
		Account:   s.Account().String(),
		IssuedAt:  issued,
		Signature: signature.EncodeHex(s.SignIn(issued)),
	}
}

// submitSignature posts sig to the verification endpoint of recordID.
func submitSignature(apiURL string, recordID uint64, role signature.Role, sig []byte) (int, error) {
	data, err := json.Marshal(map[string]string{"signature": signature.EncodeHex(sig)})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal signature: %w", err)
	}

	url := fmt.Sprintf("%s/records/%d/verify/%s", apiURL, recordID, role)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to submit signature: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return resp.StatusCode, fmt.Errorf("verification failed with status %d: %s", resp.StatusCode, body.Error)
	}
	return resp.StatusCode, nil
}

func run(opts *options, out io.Writer) error {
	if opts.NewKey {
		key, err := secp256k1.GeneratePrivateKey()
		if err != nil {
			return fmt.Errorf("failed to generate key: %w", err)
		}
		s := signature.NewSigner(key, opts.Domain)
		fmt.Fprintf(out, "key: %s\naccount: %s\n", hex.EncodeToString(key.Serialize()), s.Account())
		return nil
	}

	if opts.Key == "" {
		return errNoKey
	}
	key, err := signature.ParsePrivateKey(opts.Key)
	if err != nil {
		return err
	}
	s := signature.NewSigner(key, opts.Domain)

	if opts.SignIn {
		return json.NewEncoder(out).Encode(signIn(s, time.Now()))
	}

	role, err := signature.ParseRole(opts.Role)
	if err != nil {
		return err
	}
	sig := s.SignRecord(opts.Record, role)
	fmt.Fprintf(out, "account: %s\nsignature: %s\n", s.Account(), signature.EncodeHex(sig))

	if !opts.Submit {
		return nil
	}
	status, err := submitSignature(opts.APIURL, opts.Record, role, sig)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"record_id": opts.Record,
		"role":      role,
		"status":    status,
	}).Info("Submitted verification")
	return nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if err := run(opts, os.Stdout); err != nil {
		log.WithError(err).Fatal("Signer failed")
	}
}
