package staging_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"listingstudio.app/studio/internal/model"
	"listingstudio.app/studio/internal/staging"
)

func sources(names ...string) []staging.Source {
	out := make([]staging.Source, len(names))
	for i, n := range names {
		out[i] = staging.Source{
			Index: i,
			Photo: model.Photo{
				PhotoIdentity: model.PhotoIdentity{Name: n, Size: int64(len(n))},
				MimeType:      "image/jpeg",
				Data:          []byte(n),
			},
		}
	}
	return out
}

var _ = Describe("Orchestrator", func() {
	var (
		ctx       context.Context
		enhancer  *mockEnhancer
		publisher *recordingPublisher
		orch      *staging.Orchestrator
	)

	BeforeEach(func() {
		ctx = context.Background()
		enhancer = &mockEnhancer{}
		publisher = &recordingPublisher{}
		orch = staging.NewOrchestrator(enhancer, publisher, staging.Config{})
	})

	It("rejects an empty selection without launching anything", func() {
		var calls atomic.Int32
		enhancer.enhanceFn = func(_ context.Context, data []byte, _ string) (model.EnhancedPhoto, error) {
			calls.Add(1)
			return model.EnhancedPhoto{}, nil
		}

		run, err := orch.Stage(ctx, "s1", nil)

		Expect(err).To(MatchError(staging.ErrEmptySelection))
		Expect(run).To(BeNil())
		Expect(calls.Load()).To(BeZero())
	})

	It("enhances every selected photo", func() {
		run, err := orch.Stage(ctx, "s1", sources("a.jpg", "b.jpg", "c.jpg"))
		Expect(err).NotTo(HaveOccurred())

		Expect(run.Wait(ctx)).To(Succeed())

		tasks := run.Tasks()
		Expect(tasks).To(HaveLen(3))
		for i, t := range tasks {
			Expect(t.Index).To(Equal(i))
			Expect(t.State).To(Equal(model.TaskStateSucceeded))
			Expect(t.Enhanced).NotTo(BeNil())
			Expect(t.Enhanced.MimeType).To(Equal("image/png"))
		}
		Expect(run.AnyFailed()).To(BeFalse())
	})

	It("isolates a failing task from its siblings", func() {
		enhancer.enhanceFn = func(_ context.Context, data []byte, _ string) (model.EnhancedPhoto, error) {
			if string(data) == "b.jpg" {
				return model.EnhancedPhoto{}, errors.New("no image in response")
			}
			return model.EnhancedPhoto{MimeType: "image/png", Data: data}, nil
		}

		run, err := orch.Stage(ctx, "s1", sources("a.jpg", "b.jpg", "c.jpg"))
		Expect(err).NotTo(HaveOccurred())
		Expect(run.Wait(ctx)).To(Succeed())

		tasks := run.Tasks()
		Expect(tasks[0].State).To(Equal(model.TaskStateSucceeded))
		Expect(tasks[1].State).To(Equal(model.TaskStateFailed))
		Expect(tasks[1].Error).To(ContainSubstring("no image in response"))
		Expect(tasks[1].Enhanced).To(BeNil())
		Expect(tasks[2].State).To(Equal(model.TaskStateSucceeded))
		Expect(run.AnyFailed()).To(BeTrue())
	})

	It("publishes each completion before the slower tasks finish", func() {
		release := make(chan struct{})
		enhancer.enhanceFn = func(_ context.Context, data []byte, _ string) (model.EnhancedPhoto, error) {
			if string(data) == "slow.jpg" {
				<-release
			}
			return model.EnhancedPhoto{MimeType: "image/png", Data: data}, nil
		}

		run, err := orch.Stage(ctx, "s1", sources("fast.jpg", "slow.jpg"))
		Expect(err).NotTo(HaveOccurred())

		Eventually(func() model.TaskState {
			t, _ := run.Task(0)
			return t.State
		}).Should(Equal(model.TaskStateSucceeded))

		slow, _ := run.Task(1)
		Expect(slow.State).To(Equal(model.TaskStateInProgress))
		Consistently(run.Done(), 50*time.Millisecond).ShouldNot(BeClosed())

		close(release)
		Eventually(run.Done()).Should(BeClosed())
	})

	It("walks every task through each state exactly once", func() {
		run, err := orch.Stage(ctx, "s1", sources("a.jpg", "b.jpg"))
		Expect(err).NotTo(HaveOccurred())
		Expect(run.Wait(ctx)).To(Succeed())

		for _, idx := range []int{0, 1} {
			Expect(publisher.statesFor(idx)).To(Equal([]model.TaskState{
				model.TaskStatePending,
				model.TaskStateInProgress,
				model.TaskStateSucceeded,
			}))
		}

		var updates []model.StagingTask
		for u := range run.Updates() {
			updates = append(updates, u)
		}
		Expect(updates).To(HaveLen(6))
	})

	It("keeps running after the starting context is cancelled", func() {
		started := make(chan struct{}, 2)
		enhancer.enhanceFn = func(taskCtx context.Context, data []byte, _ string) (model.EnhancedPhoto, error) {
			started <- struct{}{}
			time.Sleep(20 * time.Millisecond)
			if taskCtx.Err() != nil {
				return model.EnhancedPhoto{}, taskCtx.Err()
			}
			return model.EnhancedPhoto{MimeType: "image/png", Data: data}, nil
		}
		requestCtx, cancel := context.WithCancel(ctx)

		run, err := orch.Stage(requestCtx, "s1", sources("a.jpg", "b.jpg"))
		Expect(err).NotTo(HaveOccurred())
		Eventually(started).Should(HaveLen(2))
		cancel()

		Expect(run.Wait(ctx)).To(Succeed())
		Expect(run.AnyFailed()).To(BeFalse())
	})

	It("honours the concurrency cap", func() {
		var inFlight, peak atomic.Int32
		enhancer.enhanceFn = func(_ context.Context, data []byte, _ string) (model.EnhancedPhoto, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			inFlight.Add(-1)
			return model.EnhancedPhoto{MimeType: "image/png", Data: data}, nil
		}
		orch = staging.NewOrchestrator(enhancer, publisher, staging.Config{MaxConcurrency: 2})

		run, err := orch.Stage(ctx, "s1", sources("a", "b", "c", "d", "e"))
		Expect(err).NotTo(HaveOccurred())
		Expect(run.Wait(ctx)).To(Succeed())

		Expect(peak.Load()).To(BeNumerically("<=", 2))
		for _, t := range run.Tasks() {
			Expect(t.State).To(Equal(model.TaskStateSucceeded))
		}
	})

	It("returns copies from Tasks", func() {
		run, err := orch.Stage(ctx, "s1", sources("a.jpg"))
		Expect(err).NotTo(HaveOccurred())
		Expect(run.Wait(ctx)).To(Succeed())

		tasks := run.Tasks()
		tasks[0].State = model.TaskStateFailed
		tasks[0].Enhanced.MimeType = "image/gif"

		fresh, ok := run.Task(0)
		Expect(ok).To(BeTrue())
		Expect(fresh.State).To(Equal(model.TaskStateSucceeded))
		Expect(fresh.Enhanced.MimeType).To(Equal("image/png"))
	})
})
