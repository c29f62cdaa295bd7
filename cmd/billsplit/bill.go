package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/session"
)

// billFile is the YAML bill read by the CLI:
//
//	participants:
//	  - name: An
//	    amount: 100.000
//	discount:
//	  mode: percent
//	  value: "10"
//	qr: ./qr.png
type billFile struct {
	Participants []struct {
		Name   string `yaml:"name"`
		Amount string `yaml:"amount"`
	} `yaml:"participants"`
	Discount struct {
		Mode  string `yaml:"mode"`
		Value string `yaml:"value"`
	} `yaml:"discount"`
	QR string `yaml:"qr"`
}

func loadBill(path string) (*billFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var b billFile
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &b, nil
}

// newSession fills a fresh session from the bill. Unnamed participants keep
// their default names.
func (b *billFile) newSession() (*session.Session, error) {
	s := session.New()

	// New starts with one participant; drop it so the bill decides the list.
	for _, p := range s.Snapshot().Participants {
		if err := s.RemoveParticipant(p.ID); err != nil {
			return nil, err
		}
	}

	for _, bp := range b.Participants {
		p := s.AddParticipant()
		if bp.Name != "" {
			if err := s.UpdateName(p.ID, bp.Name); err != nil {
				return nil, err
			}
		}
		if err := s.UpdateAmount(p.ID, bp.Amount); err != nil {
			return nil, err
		}
	}

	if b.Discount.Mode != "" {
		mode, err := models.ParseDiscountMode(b.Discount.Mode)
		if err != nil {
			return nil, err
		}
		s.SetDiscountMode(mode)
	}
	if b.Discount.Value != "" {
		s.SetDiscountValue(b.Discount.Value)
	}
	s.SetQR(b.QR)
	return s, nil
}
