// webhook-receiver is a local endpoint for manually testing schemadoc
// webhook notifications. It prints every delivery, verifies signatures
// when SECRET is set, and keeps simple stats.
package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"
)

// notification mirrors schemadoc's webhook wire shape.
type notification struct {
	Source    string          `json:"source"`
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

type delivery struct {
	ReceivedAt  string       `json:"received_at"`
	DeliveryID  string       `json:"delivery_id,omitempty"`
	SignatureOK *bool        `json:"signature_ok,omitempty"`
	Event       notification `json:"event"`
	RawBody     string       `json:"raw_body,omitempty"` // kept when the body does not parse
}

type stats struct {
	Count             int64      `json:"count"`
	InvalidSignatures int64      `json:"invalid_signatures"`
	LastDeliveries    []delivery `json:"last_deliveries"`
	Since             string     `json:"since"`
}

var (
	mu         sync.Mutex
	count      int64
	invalidSig int64
	deliveries []delivery
	since      time.Time
	secret     string
	maxStored  = 50
)

func main() {
	since = time.Now().UTC()
	secret = os.Getenv("SECRET")

	// The schemadoc admin API defaults to :8080; listen elsewhere so
	// both can run locally.
	addr := ":9000"
	if v := os.Getenv("ADDR"); v != "" {
		addr = v
	}

	http.HandleFunc("/hook", hookHandler)
	http.HandleFunc("/stats", statsHandler)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	http.HandleFunc("/reset", func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		count = 0
		invalidSig = 0
		deliveries = nil
		since = time.Now().UTC()
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "reset")
	})

	if secret != "" {
		log.Println("webhook-receiver: verifying signatures (SECRET set)")
	} else {
		log.Println("webhook-receiver: SECRET not set; accepting unsigned deliveries")
	}
	log.Printf("webhook-receiver listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}

func hookHandler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	defer r.Body.Close()

	d := delivery{
		ReceivedAt: time.Now().UTC().Format(time.RFC3339Nano),
		DeliveryID: r.Header.Get("X-SchemaDoc-Delivery-ID"),
	}

	if secret != "" {
		ok := verifySignature(secret, body, r.Header.Get("X-SchemaDoc-Signature"))
		d.SignatureOK = &ok
	}

	if err := json.Unmarshal(body, &d.Event); err != nil {
		d.RawBody = string(body)
	}

	mu.Lock()
	count++
	if d.SignatureOK != nil && !*d.SignatureOK {
		invalidSig++
	}
	deliveries = append(deliveries, d)
	if len(deliveries) > maxStored {
		deliveries = deliveries[len(deliveries)-maxStored:]
	}
	current := count
	mu.Unlock()

	if d.SignatureOK != nil && !*d.SignatureOK {
		log.Printf("hook #%d: INVALID SIGNATURE delivery=%s", current, d.DeliveryID)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprintln(w, `{"error":"invalid signature"}`)
		return
	}

	if d.Event.Source != "" {
		log.Printf("hook #%d: source=%s status=%s delivery=%s", current, d.Event.Source, d.Event.Status, d.DeliveryID)
	} else {
		log.Printf("hook #%d: %s", current, string(body))
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"received":%d}`, current)
}

func statsHandler(w http.ResponseWriter, _ *http.Request) {
	mu.Lock()
	s := stats{
		Count:             count,
		InvalidSignatures: invalidSig,
		LastDeliveries:    deliveries,
		Since:             since.Format(time.RFC3339),
	}
	mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s)
}

// verifySignature mirrors schemadoc's webhook signing: hex-encoded
// HMAC-SHA256 of the raw body.
func verifySignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
