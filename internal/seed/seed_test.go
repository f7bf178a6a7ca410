package seed

import "testing"

func TestComputeCounts_Default(t *testing.T) {
	quran, hadith, daawah := computeCounts(10, defaultDistribution)
	if quran+hadith+daawah != 10 {
		t.Fatalf("sum mismatch: got %d", quran+hadith+daawah)
	}
	if quran != 4 || hadith != 3 || daawah != 3 {
		t.Fatalf("unexpected default counts: quran=%d, hadith=%d, daawah=%d", quran, hadith, daawah)
	}
}

func TestComputeCounts_RemainderGoesToFirst(t *testing.T) {
	quran, hadith, daawah := computeCounts(7, defaultDistribution)
	if quran+hadith+daawah != 7 {
		t.Fatalf("sum mismatch: got %d", quran+hadith+daawah)
	}
	if quran < hadith || quran < daawah {
		t.Fatalf("remainder not absorbed by first category: quran=%d, hadith=%d, daawah=%d", quran, hadith, daawah)
	}
}
