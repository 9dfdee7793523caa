package regwatch

import (
	"context"
	"time"

	"github.com/assayhq/assay/core/pkg/compliance/jkg"
)

// NIS2Adapter monitors EU NIS2 Directive (security requirements across critical sectors).
type NIS2Adapter struct {
	BaseAdapter
	sectors []string // e.g., ["energy", "transport", "banking", "health", "digital_infrastructure"]
}

// NewNIS2Adapter creates a NIS2 adapter.
func NewNIS2Adapter() *NIS2Adapter {
	return &NIS2Adapter{
		BaseAdapter: BaseAdapter{
			sourceType:   SourceNIS2,
			jurisdiction: jkg.JurisdictionEU,
			regulator:    jkg.RegulatorENISA,
			feedURL:      "https://eur-lex.europa.eu/eli/dir/2022/2555",
			healthy:      true,
		},
		sectors: []string{"energy", "transport", "banking", "health", "digital_infrastructure"},
	}
}

func (n *NIS2Adapter) FetchChanges(ctx context.Context, since time.Time) ([]*RegChange, error) {
	return []*RegChange{}, nil
}

func (n *NIS2Adapter) IsHealthy(ctx context.Context) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.healthy
}

func (n *NIS2Adapter) SetHealthy(healthy bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.healthy = healthy
}

// HIPAAAdapter monitors US HIPAA Security Rule for healthcare environments.
type HIPAAAdapter struct {
	BaseAdapter
}

// NewHIPAAAdapter creates a HIPAA adapter.
func NewHIPAAAdapter() *HIPAAAdapter {
	return &HIPAAAdapter{
		BaseAdapter: BaseAdapter{
			sourceType:   SourceHIPAA,
			jurisdiction: jkg.JurisdictionUS,
			regulator:    jkg.RegulatorHHS,
			feedURL:      "https://www.hhs.gov/hipaa/for-professionals/security",
			healthy:      true,
		},
	}
}

func (h *HIPAAAdapter) FetchChanges(ctx context.Context, since time.Time) ([]*RegChange, error) {
	return []*RegChange{}, nil
}

func (h *HIPAAAdapter) IsHealthy(ctx context.Context) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.healthy
}

func (h *HIPAAAdapter) SetHealthy(healthy bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.healthy = healthy
}

// DORAAdapter monitors the EU Digital Operational Resilience Act (Regulation 2022/2554).
// Covers ICT risk management, incident reporting, and third-party provider oversight
// for financial entities. Uses EUR-Lex bot-aware fetch policy.
type DORAAdapter struct {
	BaseAdapter
}

// NewDORAAdapter creates a DORA adapter.
func NewDORAAdapter() *DORAAdapter {
	return &DORAAdapter{
		BaseAdapter: BaseAdapter{
			sourceType:   SourceDORA,
			jurisdiction: jkg.JurisdictionEU,
			regulator:    jkg.RegulatorENISA,
			feedURL:      "https://eur-lex.europa.eu/legal-content/EN/TXT/?uri=CELEX:32022R2554",
			healthy:      true,
		},
	}
}

func (d *DORAAdapter) FetchChanges(ctx context.Context, since time.Time) ([]*RegChange, error) {
	// Production: monitors EUR-Lex for amendments to Reg 2022/2554
	// plus RTS/ITS from EBA/ESMA/EIOPA
	return []*RegChange{}, nil
}

func (d *DORAAdapter) IsHealthy(ctx context.Context) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.healthy
}

func (d *DORAAdapter) SetHealthy(healthy bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.healthy = healthy
}
