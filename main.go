package main

import (
	"flag"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/lintang-b-s/bpm/lib"
	"github.com/lintang-b-s/bpm/lib/buffer"
	"github.com/lintang-b-s/bpm/lib/disk"
	"github.com/lintang-b-s/bpm/lib/util"
)

const payloadSize = 64

// pageJob. satu job cuma pegang satu page, jadi tidak ada dua worker yang pin page yang sama.
type pageJob struct {
	pageID  disk.PageID
	ops     int
	payload string
}

func main() {
	dbDir := flag.String("dir", lib.DefaultOptions.DBDir, "database directory")
	poolSize := flag.Int("pool", lib.DefaultOptions.BufferPoolSize, "number of frames in the buffer pool")
	numPages := flag.Int("pages", 4*lib.DefaultOptions.BufferPoolSize, "number of pages to create")
	numWorkers := flag.Int("workers", 8, "number of concurrent workers")
	maxOps := flag.Int("ops", 4, "max fetch/unpin rounds per page")
	seed := flag.Uint64("seed", 0, "payload generator seed")
	flag.Parse()

	if *numWorkers >= *poolSize {
		log.Fatalf("workers (%d) must be smaller than pool size (%d)", *numWorkers, *poolSize)
	}

	dm, err := disk.NewDiskManager(*dbDir)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := dm.Close(); err != nil {
			log.Printf("close disk manager: %v", err)
		}
	}()

	bpm := buffer.NewBufferPoolManager(*poolSize, dm, nil)
	faker := gofakeit.New(*seed)

	startTimer := time.Now()
	pageIDs, err := createPages(bpm, *numPages, faker)
	if err != nil {
		log.Printf("create pages: %v", err)
		return
	}
	log.Printf("%v seconds for creating %d pages", time.Since(startTimer).Seconds(), len(pageIDs))

	jobs := make([]pageJob, len(pageIDs))
	for i, pageID := range pageIDs {
		jobs[i] = pageJob{
			pageID:  pageID,
			ops:     faker.Number(1, *maxOps),
			payload: faker.LetterN(payloadSize),
		}
	}

	startTimer = time.Now()
	failed := runWorkload(bpm, jobs, *numWorkers)
	log.Printf("%v seconds for %d jobs, %d failed", time.Since(startTimer).Seconds(), len(jobs), failed)

	if err := bpm.FlushAllPages(); err != nil {
		log.Printf("flush all pages: %v", err)
	}

	stats := bpm.Stats()
	log.Printf("hits=%d misses=%d evictions=%d flushes=%d disk reads=%d disk writes=%d",
		stats.Hits, stats.Misses, stats.Evictions, stats.Flushes, dm.NumReads(), dm.NumWrites())
}

// createPages. buat numPages page baru, isi dengan payload random lalu unpin sebagai dirty.
func createPages(bpm *buffer.BufferPoolManager, numPages int, faker *gofakeit.Faker) ([]disk.PageID, error) {
	pageIDs := make([]disk.PageID, numPages)
	for i := range pageIDs {
		page, err := bpm.NewPage(&pageIDs[i])
		if err != nil {
			return nil, err
		}
		copy(page.GetData(), faker.LetterN(payloadSize))
		if err := bpm.UnpinPage(pageIDs[i], true); err != nil {
			return nil, err
		}
	}
	return pageIDs, nil
}

// runWorkload. fetch, tulis payload & unpin tiap page sebanyak job.ops kali secara concurrent. return jumlah job yang gagal.
func runWorkload(bpm *buffer.BufferPoolManager, jobs []pageJob, numWorkers int) int {
	workers := util.NewWorkerPool[pageJob, error](numWorkers, len(jobs))
	for _, job := range jobs {
		workers.AddJob(job)
	}
	close(workers.JobQueue)

	workers.Start(func(job pageJob) error {
		for i := 0; i < job.ops; i++ {
			page, err := bpm.FetchPage(job.pageID)
			if err != nil {
				return err
			}
			copy(page.GetData(), job.payload)
			if err := bpm.UnpinPage(job.pageID, true); err != nil {
				return err
			}
		}
		return nil
	})

	workers.Wait()

	failed := 0
	for err := range workers.CollectResults() {
		if err != nil {
			log.Printf("job failed: %v", err)
			failed++
		}
	}
	return failed
}
