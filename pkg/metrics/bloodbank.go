package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BloodBankMetrics records donation throughput and the current stock per blood group.
type BloodBankMetrics struct {
	donations      *prometheus.CounterVec
	donatedUnits   *prometheus.CounterVec
	requests       *prometheus.CounterVec
	inventoryUnits *prometheus.GaugeVec
}

// NewBloodBankMetrics registers the blood bank metrics on the provided registerer.
func NewBloodBankMetrics(reg prometheus.Registerer) *BloodBankMetrics {
	if reg == nil {
		return &BloodBankMetrics{}
	}
	donations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "donations_recorded_total",
		Help: "Donation records accepted per blood group.",
	}, []string{"blood_group"})
	donatedUnits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "donation_units_total",
		Help: "Units of blood collected per blood group.",
	}, []string{"blood_group"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "blood_requests_total",
		Help: "Blood requests created per status.",
	}, []string{"status"})
	inventoryUnits := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "inventory_available_units",
		Help: "Units currently available in the inventory per blood group.",
	}, []string{"blood_group"})
	reg.MustRegister(donations, donatedUnits, requests, inventoryUnits)
	return &BloodBankMetrics{
		donations:      donations,
		donatedUnits:   donatedUnits,
		requests:       requests,
		inventoryUnits: inventoryUnits,
	}
}

// RecordDonation counts an accepted donation and its collected units.
func (b *BloodBankMetrics) RecordDonation(bloodGroup string, units int) {
	if b == nil || b.donations == nil {
		return
	}
	label := normalizeLabel(bloodGroup)
	b.donations.WithLabelValues(label).Inc()
	b.donatedUnits.WithLabelValues(label).Add(float64(units))
}

// RecordRequest counts a newly created blood request by status.
func (b *BloodBankMetrics) RecordRequest(status string) {
	if b == nil || b.requests == nil {
		return
	}
	b.requests.WithLabelValues(normalizeLabel(status)).Inc()
}

// SetInventoryUnits publishes the current available units for a blood group.
func (b *BloodBankMetrics) SetInventoryUnits(bloodGroup string, units int) {
	if b == nil || b.inventoryUnits == nil {
		return
	}
	b.inventoryUnits.WithLabelValues(normalizeLabel(bloodGroup)).Set(float64(units))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
