// Package seeder generates realistic fake component histories for demos
// and load testing, with optional injected inconsistencies for exercising
// the integrity engine.
package seeder

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/aerotrace-systems/aerotrace/internal/models"
)

// Config controls fleet generation.
type Config struct {
	Components int
	// AnomalyRate is the fraction of components that get one injected
	// inconsistency (counter regression, double install or a long gap).
	AnomalyRate float64
	Seed        int64
}

// DefaultConfig returns a small demo fleet with some anomalies.
func DefaultConfig() Config {
	return Config{
		Components:  25,
		AnomalyRate: 0.3,
		Seed:        time.Now().UnixNano(),
	}
}

// Generator produces fake ingestion requests.
type Generator struct {
	cfg   Config
	faker *gofakeit.Faker
	rng   *rand.Rand
}

func New(cfg Config) *Generator {
	return &Generator{
		cfg:   cfg,
		faker: gofakeit.New(cfg.Seed),
		rng:   rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Fleet generates the configured number of components.
func (g *Generator) Fleet() []models.IngestComponentRequest {
	out := make([]models.IngestComponentRequest, 0, g.cfg.Components)
	for i := 0; i < g.cfg.Components; i++ {
		out = append(out, g.Component())
	}
	return out
}

var partDescriptions = []string{
	"Hydraulic pump assembly",
	"Fuel control unit",
	"Starter generator",
	"Air cycle machine",
	"Main gearbox",
	"Bleed air valve",
	"Constant speed drive",
	"Flap actuator",
}

// Component generates one component with a plausible shop-visit history.
func (g *Generator) Component() models.IngestComponentRequest {
	manufactured := time.Now().AddDate(-2-g.rng.Intn(10), -g.rng.Intn(12), 0).UTC().Truncate(24 * time.Hour)

	req := models.IngestComponentRequest{
		PartNumber:      fmt.Sprintf("%s-%d", g.faker.LetterN(3), 1000+g.rng.Intn(9000)),
		SerialNumber:    fmt.Sprintf("SN%06d", g.rng.Intn(1000000)),
		Description:     partDescriptions[g.rng.Intn(len(partDescriptions))],
		ManufactureDate: manufactured,
		Status:          models.StatusServiceable,
	}

	oem := models.Facility{Name: g.faker.Company(), Type: models.FacilityOEM}
	operator := g.faker.Company()
	aircraft := fmt.Sprintf("N%d%s", 100+g.rng.Intn(900), g.faker.LetterN(2))
	mro := models.Facility{
		Name:              g.faker.Company() + " Aerospace Services",
		Type:              models.FacilityMRO,
		CertificateNumber: fmt.Sprintf("%s%dR", g.faker.LetterN(2), 100+g.rng.Intn(900)),
	}

	hours := 0.0
	cycles := 0
	date := manufactured

	add := func(t models.EventType, f models.Facility, withCounters bool) *models.LifecycleEvent {
		e := models.LifecycleEvent{
			Type:      t,
			EventDate: date,
			Facility:  f,
			Performer: models.Performer{
				Name:          g.faker.Name(),
				Certification: fmt.Sprintf("A&P %07d", g.rng.Intn(10000000)),
			},
		}
		if withCounters {
			h, c := hours, cycles
			e.FlightHours = &h
			e.Cycles = &c
		}
		req.Events = append(req.Events, e)
		return &req.Events[len(req.Events)-1]
	}

	add(models.EventManufacture, oem, true)
	req.Documents = append(req.Documents, models.Document{
		DocType:    models.DocTypeBirthCertificate,
		Title:      "Certificate of Conformance",
		UploadedAt: manufactured,
	})

	// A few operating periods, each ending in a shop visit.
	visits := 1 + g.rng.Intn(3)
	for v := 0; v < visits; v++ {
		date = date.AddDate(0, 0, 7+g.rng.Intn(14))
		inst := add(models.EventInstall, models.Facility{Name: operator, Type: models.FacilityOperator}, true)
		inst.Aircraft = aircraft
		inst.Operator = operator

		// Fly for a while at a sane rate.
		flightDays := 180 + g.rng.Intn(540)
		hours += float64(flightDays) * (2 + g.rng.Float64()*6)
		cycles += int(float64(flightDays) * (1 + g.rng.Float64()*4))
		date = date.AddDate(0, 0, flightDays)

		rem := add(models.EventRemove, models.Facility{Name: operator, Type: models.FacilityOperator}, true)
		rem.Aircraft = aircraft
		rem.Operator = operator
		rem.Notes = "Removed for scheduled overhaul"

		date = date.AddDate(0, 0, 3+g.rng.Intn(10))
		add(models.EventReceivingInspection, mro, true)
		date = date.AddDate(0, 0, 2+g.rng.Intn(5))
		add(models.EventTeardown, mro, false)
		date = date.AddDate(0, 0, 5+g.rng.Intn(15))
		repair := add(models.EventRepair, mro, false)
		repair.WorkOrder = fmt.Sprintf("WO-%06d", g.rng.Intn(1000000))
		repair.CMMReference = fmt.Sprintf("CMM %d-%d-%d", 20+g.rng.Intn(60), g.rng.Intn(90), g.rng.Intn(90))
		date = date.AddDate(0, 0, 3+g.rng.Intn(7))
		add(models.EventReassembly, mro, false)
		date = date.AddDate(0, 0, 1+g.rng.Intn(3))
		add(models.EventFunctionalTest, mro, false)
		date = date.AddDate(0, 0, 1+g.rng.Intn(3))
		rel := add(models.EventReleaseToService, mro, true)
		rel.Documents = append(rel.Documents, models.GeneratedDocument{
			DocType:   models.DocTypeReleaseCertificate,
			Status:    "signed",
			CreatedAt: date,
		})
	}

	if g.rng.Float64() < g.cfg.AnomalyRate {
		g.injectAnomaly(&req)
	}

	return req
}

// injectAnomaly plants one inconsistency of a random kind.
func (g *Generator) injectAnomaly(req *models.IngestComponentRequest) {
	switch g.rng.Intn(3) {
	case 0:
		// Counter regression on the last counted event.
		for i := len(req.Events) - 1; i >= 0; i-- {
			if req.Events[i].Cycles != nil && *req.Events[i].Cycles > 100 {
				bad := *req.Events[i].Cycles - 50 - g.rng.Intn(200)
				req.Events[i].Cycles = &bad
				return
			}
		}
	case 1:
		// Second install with no intervening removal.
		last := req.Events[len(req.Events)-1]
		dup := models.LifecycleEvent{
			Type:      models.EventInstall,
			EventDate: last.EventDate.AddDate(0, 0, 5),
			Facility:  models.Facility{Name: g.faker.Company(), Type: models.FacilityOperator},
			Performer: models.Performer{Name: g.faker.Name()},
			Aircraft:  fmt.Sprintf("N%d%s", 100+g.rng.Intn(900), g.faker.LetterN(2)),
		}
		req.Events = append(req.Events, dup, models.LifecycleEvent{
			Type:      models.EventInstall,
			EventDate: dup.EventDate.AddDate(0, 1, 0),
			Facility:  models.Facility{Name: g.faker.Company(), Type: models.FacilityOperator},
			Performer: models.Performer{Name: g.faker.Name()},
			Aircraft:  fmt.Sprintf("N%d%s", 100+g.rng.Intn(900), g.faker.LetterN(2)),
		})
	case 2:
		// Strip the MRO certificate so facility checks fire.
		for i := range req.Events {
			if req.Events[i].Facility.Type == models.FacilityMRO {
				req.Events[i].Facility.CertificateNumber = ""
			}
		}
	}
}
