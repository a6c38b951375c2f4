package dispatcher

import "time"

// motivations rotate by day of year; every sender sees the same quote on the
// same day.
var motivations = []string{
	"Jangan menabung dari sisa pengeluaran, tapi keluarkan uang dari sisa tabungan.",
	"Uang yang dicatat adalah uang yang terkendali.",
	"Kekayaan bukan tentang berapa yang kamu hasilkan, tapi berapa yang kamu simpan.",
	"Belilah apa yang kamu butuhkan, bukan apa yang kamu inginkan.",
	"Hemat hari ini, tenang di hari tua.",
	"Investasi terbaik adalah pada dirimu sendiri.",
	"Catat setiap rupiah, karena dari situlah perubahan dimulai.",
	"Disiplin kecil setiap hari mengalahkan niat besar yang tertunda.",
	"Rencanakan keuanganmu, atau keuanganmu yang mengatur hidupmu.",
	"Jangan biarkan gaya hidup naik lebih cepat dari penghasilan.",
	"Utang kecil yang dibiarkan akan tumbuh menjadi beban besar.",
	"Setiap pengeluaran kecil yang tercatat adalah langkah menuju kebebasan finansial.",
	"Kaya bukan soal penghasilan besar, tapi soal kebiasaan yang benar.",
	"Mulailah menabung bukan karena sisa, tapi karena niat.",
}

// motivationOfDay picks today's quote.
func motivationOfDay(now time.Time) string {
	return motivations[now.YearDay()%len(motivations)]
}
