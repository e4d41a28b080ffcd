package repositories_test

import (
	"context"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"casasapi/src/domain/entities"
	"casasapi/src/repositories"
	"casasapi/src/test_artefacts/fakes"
	"casasapi/src/test_artefacts/stubs"
)

var _ = Describe("CachedPropiedadRepository", func() {
	var (
		ctx        context.Context
		store      *fakes.PropiedadStore
		repository *repositories.CachedPropiedadRepository
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = fakes.NewPropiedadStore()
		repository = repositories.NewCachedPropiedadRepository(slog.New(slog.DiscardHandler), store, nil, time.Minute)
	})

	Context("when the listing was already read", func() {
		It("serves it from the local cache", func() {
			// ARRANGE
			store.PutRow(repositories.EncodeRow(stubs.NewPropiedadStub().WithID(1).Get()))
			first, err := repository.FindAll(ctx)
			Expect(err).NotTo(HaveOccurred())

			store.PutRow(repositories.EncodeRow(stubs.NewPropiedadStub().WithID(2).Get()))

			// ACT
			second, err := repository.FindAll(ctx)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(HaveLen(1))
			Expect(second).To(BeComparableTo(first))
		})

		It("drops the cached listing on create", func() {
			// ARRANGE
			_, err := repository.FindAll(ctx)
			Expect(err).NotTo(HaveOccurred())

			// ACT
			id, err := repository.Create(ctx, stubs.NewPropiedadStub().Get())
			Expect(err).NotTo(HaveOccurred())
			listing, err := repository.FindAll(ctx)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(listing).To(HaveLen(1))
			Expect(listing[0].ID).To(Equal(id))
		})
	})

	Context("when a record changes", func() {
		It("drops the cached record on update and delete", func() {
			// ARRANGE
			id, err := repository.Create(ctx, stubs.NewPropiedadStub().Get())
			Expect(err).NotTo(HaveOccurred())
			cached, err := repository.FindByID(ctx, id)
			Expect(err).NotTo(HaveOccurred())

			changed := cached
			changed.Titulo = "Casa renovada"

			// ACT
			found, err := repository.Update(ctx, changed)
			Expect(err).NotTo(HaveOccurred())
			afterUpdate, err := repository.FindByID(ctx, id)
			Expect(err).NotTo(HaveOccurred())

			Expect(repository.Delete(ctx, id)).To(Succeed())
			_, errAfterDelete := repository.FindByID(ctx, id)

			// ASSERT
			Expect(found).To(BeTrue())
			Expect(afterUpdate.Titulo).To(Equal("Casa renovada"))
			Expect(errAfterDelete).To(HaveOccurred())
		})
	})

	Context("when a write lands while a read is still in flight", func() {
		// pauseNextRead segura a próxima leitura do store logo depois do snapshot.
		pauseNextRead := func() (snapshotTaken chan struct{}, release chan struct{}) {
			snapshotTaken = make(chan struct{})
			release = make(chan struct{})
			store.AfterRead = func() {
				close(snapshotTaken)
				<-release
			}
			return snapshotTaken, release
		}

		It("does not cache the listing read before a create", func() {
			// ARRANGE
			snapshotTaken, release := pauseNextRead()
			staleRead := make(chan []entities.Propiedad)
			go func() {
				defer GinkgoRecover()
				listing, err := repository.FindAll(ctx)
				Expect(err).NotTo(HaveOccurred())
				staleRead <- listing
			}()
			Eventually(snapshotTaken).Should(BeClosed())

			id, err := repository.Create(ctx, stubs.NewPropiedadStub().Get())
			Expect(err).NotTo(HaveOccurred())

			close(release)
			Eventually(staleRead).Should(Receive(BeEmpty()))
			store.AfterRead = nil

			// ACT
			listing, err := repository.FindAll(ctx)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(listing).To(HaveLen(1))
			Expect(listing[0].ID).To(Equal(id))
		})

		It("does not cache the record read before an update", func() {
			// ARRANGE
			id, err := repository.Create(ctx, stubs.NewPropiedadStub().WithTitulo("Casa antiga").Get())
			Expect(err).NotTo(HaveOccurred())

			snapshotTaken, release := pauseNextRead()
			staleRead := make(chan entities.Propiedad)
			go func() {
				defer GinkgoRecover()
				propiedad, err := repository.FindByID(ctx, id)
				Expect(err).NotTo(HaveOccurred())
				staleRead <- propiedad
			}()
			Eventually(snapshotTaken).Should(BeClosed())

			row, ok := store.Row(id)
			Expect(ok).To(BeTrue())
			changed := repositories.DecodeRow(row)
			changed.Titulo = "Casa renovada"
			_, err = repository.Update(ctx, changed)
			Expect(err).NotTo(HaveOccurred())

			close(release)
			var stale entities.Propiedad
			Eventually(staleRead).Should(Receive(&stale))
			Expect(stale.Titulo).To(Equal("Casa antiga"))
			store.AfterRead = nil

			// ACT
			propiedad, err := repository.FindByID(ctx, id)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(propiedad.Titulo).To(Equal("Casa renovada"))
		})
	})
})
