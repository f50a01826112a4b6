package actions

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

type facility struct {
	name       string
	address    string
	distanceKm float64
}

var hospitals = []facility{
	{"RSUD Dr. Soetomo", "Jl. Mayjen Prof. Dr. Moestopo No. 6-8, Surabaya", 3.5},
	{"RS Siloam", "Jl. Raya Gubeng No. 70, Surabaya", 5.2},
	{"RSUD Dr. Soedono", "Jl. Dr. Soetomo No. 59, Madiun", 8.1},
}

var clinics = []facility{
	{"Puskesmas Kelurahan Sukolilo", "Jl. Sukolilo No. 123, Surabaya", 2.5},
	{"Puskesmas Kelurahan Gubeng", "Jl. Gubeng No. 45, Surabaya", 4.1},
	{"Puskesmas Kelurahan Wonokromo", "Jl. Wonokromo No. 78, Surabaya", 6.3},
}

// MockServices simulates the external action collaborators. Production
// wiring would talk to the national emergency API and the scheduling
// platform; the mock keeps the same response shapes.
type MockServices struct {
	rng *rand.Rand
}

var _ Services = (*MockServices)(nil)

func NewMockServices() *MockServices {
	return &MockServices{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func nearest(list []facility) facility {
	best := list[0]
	for _, f := range list[1:] {
		if f.distanceKm < best.distanceKm {
			best = f
		}
	}
	return best
}

func (m *MockServices) DispatchEmergency(ctx context.Context, location string, symptoms []string) (*DispatchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hospital := nearest(hospitals)
	etaMinutes := 10 + m.rng.Intn(16)
	ambulanceID := fmt.Sprintf("AMB-%04d", 1000+m.rng.Intn(9000))

	return &DispatchResult{
		Dispatched:        true,
		AmbulanceID:       ambulanceID,
		EstimatedArrival:  time.Now().Add(time.Duration(etaMinutes) * time.Minute).Format("15:04"),
		Facility:          hospital.name,
		FacilityAddress:   hospital.address,
		FacilityNotified:  true,
		TrackingReference: fmt.Sprintf("https://tracking.example/ambulance/%s", ambulanceID),
	}, nil
}

func (m *MockServices) ScheduleVisit(ctx context.Context, patientID string, symptoms []string, location string) (*BookingResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clinic := nearest(clinics)
	if location != "" && m.rng.Intn(2) == 0 {
		clinic = clinics[m.rng.Intn(len(clinics))]
	}

	doctors := []string{"Dr. Siti Nurhaliza, Sp.PD", "Dr. Budi Santoso, Sp.A"}
	hoursAhead := 1 + m.rng.Intn(4)

	return &BookingResult{
		BookingID:       fmt.Sprintf("JKN-%06d", 100000+m.rng.Intn(900000)),
		Facility:        clinic.name,
		FacilityAddress: clinic.address,
		AppointmentTime: time.Now().Add(time.Duration(hoursAhead) * time.Hour).Format("2006-01-02 15:00"),
		Doctor:          doctors[m.rng.Intn(len(doctors))],
		QueueNumber:     fmt.Sprintf("%c-%02d", 'A'+rune(m.rng.Intn(3)), 10+m.rng.Intn(90)),
		Format:          "Telehealth (Video Call)",
	}, nil
}

func (m *MockServices) SelfCareGuide(ctx context.Context, symptoms []string) (*SelfCareResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &SelfCareResult{
		Title: "Panduan Perawatan di Rumah",
		Recommendations: []string{
			"Istirahat yang cukup",
			"Minum air putih yang banyak",
			"Hindari aktivitas berat",
			"Monitor gejala secara berkala",
		},
		WarningSigns: []string{
			"Demam tinggi (>39 derajat C)",
			"Sesak napas",
			"Nyeri yang tidak tertahankan",
		},
		WhenToSeekHelp: "Jika gejala memburuk atau tidak membaik dalam 3 hari, segera hubungi dokter",
	}

	for _, s := range symptoms {
		if strings.Contains(strings.ToLower(s), "demam") {
			result.Recommendations = append(result.Recommendations, "Kompres hangat dan pantau suhu tubuh")
			break
		}
	}
	return result, nil
}
