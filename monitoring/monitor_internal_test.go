package monitoring

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pagesim/mem/vm/paging"
)

func buildSimulation(name string, numFrames int) *paging.Simulation {
	s, err := paging.MakeBuilder().
		WithNumFrames(numFrames).
		WithPolicy(paging.PolicyLRU).
		Build(name)
	Expect(err).NotTo(HaveOccurred())

	return s
}

var _ = Describe("Monitor", func() {
	var (
		m      *Monitor
		server *httptest.Server
	)

	BeforeEach(func() {
		m = NewMonitor()
		server = httptest.NewServer(m.Router())
	})

	AfterEach(func() {
		server.Close()
	})

	get := func(path string) (int, string) {
		rsp, err := http.Get(server.URL + path)
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		body, err := io.ReadAll(rsp.Body)
		Expect(err).NotTo(HaveOccurred())

		return rsp.StatusCode, string(body)
	}

	It("should register simulations as hooks", func() {
		s := buildSimulation("Sim", 2)

		m.RegisterSimulation(s)

		Expect(s.NumHooks()).To(Equal(1))
		Expect(m.simulations).To(HaveLen(1))
	})

	It("should follow the counters of a running simulation", func() {
		s := buildSimulation("Sim", 2)
		m.RegisterSimulation(s)

		_, err := s.Access(paging.MakeRead(0x1))
		Expect(err).NotTo(HaveOccurred())

		status, body := get("/api/simulation/Sim")
		Expect(status).To(Equal(http.StatusOK))

		var view simulationView
		Expect(json.Unmarshal([]byte(body), &view)).To(Succeed())
		Expect(view.Name).To(Equal("Sim"))
		Expect(view.Policy).To(Equal("LRU"))
		Expect(view.State).To(Equal("Running"))
		Expect(view.Now).To(Equal(uint64(1)))
		Expect(view.Counters.Misses).To(Equal(uint64(1)))
		Expect(view.MissRate).To(Equal(1.0))
	})

	It("should list all simulations", func() {
		m.RegisterSimulation(buildSimulation("A", 1))
		m.RegisterSimulation(buildSimulation("B", 1))

		status, body := get("/api/simulations")
		Expect(status).To(Equal(http.StatusOK))

		var views []simulationView
		Expect(json.Unmarshal([]byte(body), &views)).To(Succeed())
		Expect(views).To(HaveLen(2))
		Expect(views[0].Name).To(Equal("A"))
		Expect(views[1].Name).To(Equal("B"))
	})

	It("should return 404 for unknown simulations", func() {
		status, body := get("/api/simulation/Missing")

		Expect(status).To(Equal(http.StatusNotFound))
		Expect(body).To(Equal("Simulation not found"))
	})

	It("should snapshot the frame table at the interval and at the end", func() {
		m.WithSnapshotInterval(2)
		s := buildSimulation("Sim", 3)
		m.RegisterSimulation(s)

		_, err := s.Access(paging.MakeRead(0x1))
		Expect(err).NotTo(HaveOccurred())
		Expect(m.byDomain[s].frames[0].Valid).To(BeFalse())

		_, err = s.Access(paging.MakeRead(0x2))
		Expect(err).NotTo(HaveOccurred())
		Expect(m.byDomain[s].frames[1].Valid).To(BeTrue())

		_, err = s.Access(paging.MakeRead(0x3))
		Expect(err).NotTo(HaveOccurred())
		Expect(m.byDomain[s].frames[2].Valid).To(BeFalse())

		s.Finish()
		Expect(m.byDomain[s].frames[2].Valid).To(BeTrue())
		Expect(m.byDomain[s].State).To(Equal("Done"))
	})

	It("should serve the frame table", func() {
		s := buildSimulation("Sim", 2)
		m.RegisterSimulation(s)
		_, err := s.Run(paging.NewSliceSource(paging.MakeWrite(0x7)))
		Expect(err).NotTo(HaveOccurred())

		status, body := get("/api/frames/Sim")

		Expect(status).To(Equal(http.StatusOK))
		Expect(body).NotTo(BeEmpty())
	})

	It("should list progress bars until they complete", func() {
		bar := m.CreateProgressBar("trace.txt", 100)
		_, err := io.Copy(bar, strings.NewReader("0123456789"))
		Expect(err).NotTo(HaveOccurred())

		status, body := get("/api/progress")
		Expect(status).To(Equal(http.StatusOK))

		var views []progressBarView
		Expect(json.Unmarshal([]byte(body), &views)).To(Succeed())
		Expect(views).To(HaveLen(1))
		Expect(views[0].Name).To(Equal("trace.txt"))
		Expect(views[0].Total).To(Equal(uint64(100)))
		Expect(views[0].Finished).To(Equal(uint64(10)))

		m.CompleteProgressBar(bar)

		_, body = get("/api/progress")
		Expect(body).To(Equal("[]"))
	})

	It("should report process resources", func() {
		status, body := get("/api/resource")

		Expect(status).To(Equal(http.StatusOK))

		var rsp resourceRsp
		Expect(json.Unmarshal([]byte(body), &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should replace reserved port numbers with a random port", func() {
		Expect(NewMonitor().WithPortNumber(80).portNumber).To(Equal(0))
		Expect(NewMonitor().WithPortNumber(8080).portNumber).To(Equal(8080))
	})
})
