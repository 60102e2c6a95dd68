// Package scheduler runs periodic catalog refreshes. Future candidates:
// storefront catalogs (Game Pass, PS Plus) once their feeds are wired.
package scheduler

import (
	"log"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron *cron.Cron
}

func New() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// Schedule registers job under a standard 5-field cron spec.
func (s *Scheduler) Schedule(spec string, job func()) error {
	_, err := s.cron.AddFunc(spec, job)
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("scheduler started")
}

// Stop halts scheduling; already-running jobs are not interrupted.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("scheduler stopped")
}
