// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

//go:build integration

package postgres_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ccaw/speakerauth/internal/auth"
	"github.com/ccaw/speakerauth/internal/auth/postgres"
	"github.com/ccaw/speakerauth/internal/store"
)

var _ = Describe("Speaker and session repositories", Ordered, func() {
	var (
		ctx       context.Context
		container *tcpostgres.PostgresContainer
		pool      *pgxpool.Pool
		speakers  *postgres.SpeakerRepository
		sessions  *postgres.WebSessionRepository
	)

	BeforeAll(func() {
		ctx = context.Background()
		var err error
		container, err = tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("ccaw_test"),
			tcpostgres.WithUsername("ccaw"),
			tcpostgres.WithPassword("ccaw"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		Expect(err).NotTo(HaveOccurred())

		connStr, err := container.ConnectionString(ctx, "sslmode=disable")
		Expect(err).NotTo(HaveOccurred())

		migrator, err := store.NewMigrator(connStr)
		Expect(err).NotTo(HaveOccurred())
		Expect(migrator.Up()).To(Succeed())
		Expect(migrator.Close()).To(Succeed())

		pool, err = store.Connect(ctx, connStr, store.ConnectOptions{})
		Expect(err).NotTo(HaveOccurred())

		speakers = postgres.NewSpeakerRepository(pool)
		sessions = postgres.NewWebSessionRepository(pool)
	})

	AfterAll(func() {
		if pool != nil {
			pool.Close()
		}
		if container != nil {
			_ = container.Terminate(ctx)
		}
	})

	newSpeaker := func(email string) *auth.Speaker {
		s, err := auth.NewSpeaker(email, "Ann", "Lee", "$argon2id$hash", false)
		Expect(err).NotTo(HaveOccurred())
		return s
	}

	Describe("speakers", func() {
		It("creates and reads back a speaker by either key", func() {
			s := newSpeaker("reader@example.org")
			Expect(speakers.Create(ctx, s)).To(Succeed())

			byID, err := speakers.GetByID(ctx, s.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(byID.Email).To(Equal("reader@example.org"))
			Expect(byID.AdminUploads).To(BeEmpty())

			byEmail, err := speakers.GetByEmail(ctx, "READER@example.org")
			Expect(err).NotTo(HaveOccurred())
			Expect(byEmail.ID).To(Equal(s.ID))
		})

		It("rejects a second account with the same email in any case", func() {
			Expect(speakers.Create(ctx, newSpeaker("dupe@example.org"))).To(Succeed())

			err := speakers.Create(ctx, newSpeaker("Dupe@Example.org"))
			Expect(err).To(MatchError(auth.ErrDuplicateEmail))
		})

		It("reports unknown speakers as not found", func() {
			_, err := speakers.GetByID(ctx, ulid.Make())
			Expect(err).To(MatchError(auth.ErrNotFound))

			_, err = speakers.GetByEmail(ctx, "ghost@example.org")
			Expect(err).To(MatchError(auth.ErrNotFound))
		})

		It("detects a lost update", func() {
			s := newSpeaker("race@example.org")
			Expect(speakers.Create(ctx, s)).To(Succeed())

			first, err := speakers.GetByID(ctx, s.ID)
			Expect(err).NotTo(HaveOccurred())
			second, err := speakers.GetByID(ctx, s.ID)
			Expect(err).NotTo(HaveOccurred())

			first.SetAdmin(true)
			Expect(speakers.Update(ctx, first)).To(Succeed())

			second.SetPasswordHash("$argon2id$other")
			Expect(speakers.Update(ctx, second)).To(MatchError(auth.ErrVersionConflict))

			stored, err := speakers.GetByID(ctx, s.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Admin).To(BeTrue())
			Expect(stored.PasswordHash).To(Equal("$argon2id$hash"))
			Expect(stored.Version).To(Equal(int64(2)))
		})

		It("clears uploads on every speaker", func() {
			s := newSpeaker("uploads@example.org")
			s.Headshot = "headshots/u.jpg"
			s.AdminUploads = []string{"contract.pdf"}
			s.ResponseForm = map[string]any{"w9": "w9.pdf", "bio": "keep me"}
			Expect(speakers.Create(ctx, s)).To(Succeed())

			n, err := speakers.ClearUploads(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeNumerically(">=", 1))

			stored, err := speakers.GetByID(ctx, s.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Headshot).To(BeEmpty())
			Expect(stored.AdminUploads).To(BeEmpty())
			Expect(stored.ResponseForm).To(HaveKeyWithValue("w9", ""))
			Expect(stored.ResponseForm).To(HaveKeyWithValue("bio", "keep me"))
		})
	})

	Describe("web sessions", func() {
		It("stores, finds and deletes a session", func() {
			s := newSpeaker("session@example.org")
			Expect(speakers.Create(ctx, s)).To(Succeed())

			_, hash, err := auth.GenerateSessionToken()
			Expect(err).NotTo(HaveOccurred())
			session, err := auth.NewWebSession(s.ID, hash, "ginkgo", "127.0.0.1", time.Now().Add(time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(sessions.Create(ctx, session)).To(Succeed())

			found, err := sessions.GetByTokenHash(ctx, hash)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.SpeakerID).To(Equal(s.ID))

			Expect(sessions.DeleteByTokenHash(ctx, hash)).To(Succeed())
			_, err = sessions.GetByTokenHash(ctx, hash)
			Expect(err).To(MatchError(auth.ErrNotFound))
		})

		It("sweeps only expired sessions", func() {
			s := newSpeaker("sweep@example.org")
			Expect(speakers.Create(ctx, s)).To(Succeed())

			_, liveHash, err := auth.GenerateSessionToken()
			Expect(err).NotTo(HaveOccurred())
			live, err := auth.NewWebSession(s.ID, liveHash, "", "", time.Now().Add(time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(sessions.Create(ctx, live)).To(Succeed())

			_, deadHash, err := auth.GenerateSessionToken()
			Expect(err).NotTo(HaveOccurred())
			dead, err := auth.NewWebSession(s.ID, deadHash, "", "", time.Now().Add(-time.Minute))
			Expect(err).NotTo(HaveOccurred())
			Expect(sessions.Create(ctx, dead)).To(Succeed())

			n, err := sessions.DeleteExpired(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(int64(1)))

			_, err = sessions.GetByTokenHash(ctx, liveHash)
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
