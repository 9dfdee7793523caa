package regwatch

import (
	"context"
	"time"

	"github.com/assayhq/assay/core/pkg/compliance/jkg"
)

// EDPBAdapter monitors European Data Protection Board guidelines and recommendations.
// The EDPB provides the practical interpretation layer for GDPR.
type EDPBAdapter struct {
	BaseAdapter
}

// NewEDPBAdapter creates an EDPB adapter.
func NewEDPBAdapter() *EDPBAdapter {
	return &EDPBAdapter{
		BaseAdapter: BaseAdapter{
			sourceType:   SourceEDPB,
			jurisdiction: jkg.JurisdictionEU,
			regulator:    jkg.RegulatorEDPB,
			feedURL:      "https://www.edpb.europa.eu/our-work-tools/our-documents/publication-type/guidelines_en",
			healthy:      true,
		},
	}
}

func (e *EDPBAdapter) FetchChanges(ctx context.Context, since time.Time) ([]*RegChange, error) {
	return []*RegChange{}, nil
}

func (e *EDPBAdapter) IsHealthy(ctx context.Context) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.healthy
}

func (e *EDPBAdapter) SetHealthy(healthy bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.healthy = healthy
}

// PIPLAdapter monitors China's Personal Information Protection Law.
type PIPLAdapter struct {
	BaseAdapter
}

// NewPIPLAdapter creates a PIPL adapter.
func NewPIPLAdapter() *PIPLAdapter {
	return &PIPLAdapter{
		BaseAdapter: BaseAdapter{
			sourceType:   SourcePIPL,
			jurisdiction: jkg.JurisdictionCN,
			regulator:    jkg.RegulatorCAC,
			feedURL:      "https://www.cac.gov.cn",
			healthy:      true,
		},
	}
}

func (p *PIPLAdapter) FetchChanges(ctx context.Context, since time.Time) ([]*RegChange, error) {
	return []*RegChange{}, nil
}

func (p *PIPLAdapter) IsHealthy(ctx context.Context) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.healthy
}

func (p *PIPLAdapter) SetHealthy(healthy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.healthy = healthy
}

// LGPDAdapter monitors Brazil's Lei Geral de Proteção de Dados.
type LGPDAdapter struct {
	BaseAdapter
}

// NewLGPDAdapter creates an LGPD adapter.
func NewLGPDAdapter() *LGPDAdapter {
	return &LGPDAdapter{
		BaseAdapter: BaseAdapter{
			sourceType:   SourceLGPD,
			jurisdiction: jkg.JurisdictionBR,
			regulator:    jkg.RegulatorANPD,
			feedURL:      "https://www.gov.br/anpd",
			healthy:      true,
		},
	}
}

func (l *LGPDAdapter) FetchChanges(ctx context.Context, since time.Time) ([]*RegChange, error) {
	return []*RegChange{}, nil
}

func (l *LGPDAdapter) IsHealthy(ctx context.Context) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.healthy
}

func (l *LGPDAdapter) SetHealthy(healthy bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.healthy = healthy
}

// PDPAAdapter monitors Singapore's Personal Data Protection Act.
type PDPAAdapter struct {
	BaseAdapter
}

// NewPDPAAdapter creates a PDPA adapter.
func NewPDPAAdapter() *PDPAAdapter {
	return &PDPAAdapter{
		BaseAdapter: BaseAdapter{
			sourceType:   SourcePDPA,
			jurisdiction: jkg.JurisdictionSG,
			regulator:    jkg.RegulatorPDPC,
			feedURL:      "https://www.pdpc.gov.sg",
			healthy:      true,
		},
	}
}

func (p *PDPAAdapter) FetchChanges(ctx context.Context, since time.Time) ([]*RegChange, error) {
	return []*RegChange{}, nil
}

func (p *PDPAAdapter) IsHealthy(ctx context.Context) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.healthy
}

func (p *PDPAAdapter) SetHealthy(healthy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.healthy = healthy
}

// APPIAdapter monitors Japan's Act on Protection of Personal Information.
type APPIAdapter struct {
	BaseAdapter
}

// NewAPPIAdapter creates an APPI adapter.
func NewAPPIAdapter() *APPIAdapter {
	return &APPIAdapter{
		BaseAdapter: BaseAdapter{
			sourceType:   SourceAPPI,
			jurisdiction: jkg.JurisdictionJP,
			regulator:    jkg.RegulatorPPC,
			feedURL:      "https://www.ppc.go.jp",
			healthy:      true,
		},
	}
}

func (a *APPIAdapter) FetchChanges(ctx context.Context, since time.Time) ([]*RegChange, error) {
	return []*RegChange{}, nil
}

func (a *APPIAdapter) IsHealthy(ctx context.Context) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.healthy
}

func (a *APPIAdapter) SetHealthy(healthy bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.healthy = healthy
}

// USStatePrivacyAdapter monitors US state privacy regimes (CCPA/CPRA, VCDPA, CPA, CTDPA, UCPA).
// Configurable per state via the StateCode field.
type USStatePrivacyAdapter struct {
	BaseAdapter
	StateCode string // e.g., "CA", "VA", "CO", "CT", "UT"
	LawName   string // e.g., "CCPA/CPRA", "VCDPA"
}

// NewUSStatePrivacyAdapter creates a US state privacy adapter.
func NewUSStatePrivacyAdapter(stateCode string, lawName string, jurisdiction jkg.JurisdictionCode) *USStatePrivacyAdapter {
	return &USStatePrivacyAdapter{
		BaseAdapter: BaseAdapter{
			sourceType:   SourceUSPrivacy,
			jurisdiction: jurisdiction,
			feedURL:      "https://leginfo.legislature.ca.gov", // Default to CA
			healthy:      true,
		},
		StateCode: stateCode,
		LawName:   lawName,
	}
}

func (u *USStatePrivacyAdapter) FetchChanges(ctx context.Context, since time.Time) ([]*RegChange, error) {
	return []*RegChange{}, nil
}

func (u *USStatePrivacyAdapter) IsHealthy(ctx context.Context) bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.healthy
}

func (u *USStatePrivacyAdapter) SetHealthy(healthy bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.healthy = healthy
}

// UKICOAdapter monitors UK Information Commissioner's Office privacy guidance.
// Covers UK GDPR, Data Protection Act 2018, and ICO enforcement decisions.
type UKICOAdapter struct {
	BaseAdapter
}

// NewUKICOAdapter creates a UK ICO adapter.
func NewUKICOAdapter() *UKICOAdapter {
	return &UKICOAdapter{
		BaseAdapter: BaseAdapter{
			sourceType:   SourceUKICO,
			jurisdiction: jkg.JurisdictionGB,
			regulator:    jkg.RegulatorFCA, // ICO, reusing closest existing regulator
			feedURL:      "https://ico.org.uk/for-organisations/guidance-index/",
			healthy:      true,
		},
	}
}

func (u *UKICOAdapter) FetchChanges(ctx context.Context, since time.Time) ([]*RegChange, error) {
	// Production: scrape ICO guidance index + enforcement actions feed
	return []*RegChange{}, nil
}

func (u *UKICOAdapter) IsHealthy(ctx context.Context) bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.healthy
}

func (u *UKICOAdapter) SetHealthy(healthy bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.healthy = healthy
}
