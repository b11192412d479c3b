package eventstream_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ragbenchco/ragbench/pkg/eventstream"
)

var _ = Describe("Event", func() {
	It("marshals TaskCompletedEvent with expected top-level keys", func() {
		now := time.Unix(1767225600, 0).UTC()
		event := eventstream.TaskCompletedEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeTaskCompleted,
			EventID:       "evt_123",
			EmittedAt:     now,
			RunID:         "run-abc",
			TaskID:        "task-1",
			Collection:    "clapnq",
			Answerable:    true,
			Refusal:       false,
			DurationMs:    1840,
		}

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKey("schema_version"))
		Expect(got).To(HaveKey("event_type"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKey("run_id"))
		Expect(got).To(HaveKey("task_id"))
		Expect(got).To(HaveKey("collection"))
		Expect(got).To(HaveKey("answerable"))
		Expect(got).To(HaveKey("refusal"))
		Expect(got).To(HaveKey("duration_ms"))
	})

	It("defines stable event constants", func() {
		Expect(eventstream.SchemaVersionV1).To(BeNumerically(">", 0))
		Expect(eventstream.EventTypeTaskCompleted).To(Equal("ragbench.task.completed"))
	})

	It("provides ErrNilEvent for nil payload validation", func() {
		Expect(eventstream.ErrNilEvent).NotTo(BeNil())
		Expect(eventstream.ErrNilEvent).To(MatchError("nil task event"))
	})
})
