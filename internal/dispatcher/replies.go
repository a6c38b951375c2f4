package dispatcher

import (
	"fmt"
	"strings"

	"github.com/grafamedia/keuangan-bot/internal/domain"
)

// Reply copy is user-facing Indonesian text. Wording is part of the bot's
// contract with its users, so changes here are product changes.
const (
	replyWelcome    = "Halo, selamat datang di Asisten Keuangan Pribadi mu. ketik *Daftar* untuk mendaftarkan nomor anda."
	replyAskName    = "Silahkan ketik nama anda"
	replyRegistered = "Hi, %s, selamat ya pendaftaran mu telah berhasil. 😊\nketik *Help* untuk mendapat bantuan"

	replyMenu = "📋 *MENU BANTUAN* 📋\n" +
		"1. Untuk catat pemasukan ketik: *IN nominal jenis_pemasukan keterangan* \n" +
		"2. Untuk catat pengeluaran ketik: *OUT nominal jenis_pengeluaran keterangan* \n" +
		"3. Untuk hapus data ketik: *Hapusin / Hapusout* \n" +
		"4. Ketik *TODAY* untuk melihat pemasukan dan pengeluaran hari ini. \n" +
		"5. Ketik *OUT TODAY* untuk melihat pengeluaran hari ini. \n" +
		"6. Ketik *IN TODAY* untuk melihat pemasukan hari ini. \n" +
		"7. Ketik nama bulan dan tahun. Contoh: *Maret 2025* untuk melihat laporan bulan itu. \n" +
		"8. Ketik *IN Maret 2025* untuk laporan pemasukan. \n" +
		"9. Ketik *OUT Maret 2025* untuk laporan pengeluaran.\n" +
		"10. Ketik *SUMMARY* Untuk melihat laporan bulan ini. \n \n" +
		"Ketik *Help* kapan pun untuk melihat menu ini kembali.\n" +
		"Ketik *Info* untuk informasi tentang aplikasi ini."

	replyInfo = "📌 *Asisten Keuangan Pribadi* \n \n" +
		"Hai! Terima kasih telah menggunakan layanan ini.\n" +
		"Aplikasi ini dibuat dan di kembangkan oleh Grafamedia Software Development And Digital Product. \n\n" +
		"🔒 Semua data keuangan yang kamu catat bersifat *PRIVAT*, *RAHASIA*, dan *TERENKRIPSI* dengan baik agar hanya kamu sendiri yang bisa mengakses dan melihatnya. Kami menjaga data kamu dengan sepenuh hati ❤️\n \n" +
		"🤖 Aplikasi ini dibuat *gratis* oleh *Grafamedia* sebagai kontribusi kami untuk membantu masyarakat mengelola keuangan dengan mudah dan aman. \n \n" +
		"🙏 Jika kamu merasa terbantu dan ingin mendukung pengembangan aplikasi ini, kami sangat senang dan terbuka menerima *donasi sukarela*. 😊 \n\n" +
		" *#TerimaKasih #JagaKeuangan #AmanBersamaGrafamedia*"

	replyMotivationFrame = "💡 *Motivasi Keuangan Hari Ini*:\n \n\"*%s*\" \n \n" +
		"Setiap pengeluaran adalah pilihan. Dengan mencatat dan merencanakan keuangan, kamu sedang menyiapkan masa depan yang lebih tenang, bebas dari stres, dan penuh peluang. Ingat, bukan seberapa besar penghasilanmu, tapi seberapa bijak kamu mengaturnya."

	replyGreeting = "%s juga %s, apakah kamu butuh bantuan? 😊\nKetik *Help* untuk melihat bantuan."
	replyFallback = "Maaf ya %s, apakah kamu butuh bantuan? 😊\nKetik *Help* untuk melihat bantuan."

	replyTodaySummary = "📊 *Laporan Hari Ini* (%s) \n \n💰 Total In: Rp %s \n💥 Total Out: Rp %s\n💎 Net Balance: Rp %s"

	replyIncomeUp       = "🥳 Pemasukan hari ini lebih besar dari hari kemarin."
	replyIncomeDown     = "🥺 Pemasukan hari ini lebih kecil daripada hari kemarin."
	replyExpenseUp      = "🥺 Pengeluaran hari ini lebih besar daripada hari kemarin."
	replyExpenseDown    = "🥳 Pengeluaran hari ini lebih kecil dari hari kemarin."
	replyExpenseStable  = "😁 Pengeluaran anda stabil 👍"
	replyIncomeStable   = "😁 Pemasukan anda stabil 👍"

	replyDeleted       = "🗑️ Data dengan ID *#%d* berhasil dihapus."
	replyDeleteMissing = "⚠️ Data tidak ditemukan atau bukan milik Anda."

	replyMonthUnknown = "❌ Bulan tidak dikenali. Gunakan format seperti: *Maret 2025*"

	replyRecordIncomeUsage  = "Format salah! Contoh: *IN 50000 Gaji Keterangan* (keterangan opsional)"
	replyRecordExpenseUsage = "Format salah! \nContoh: \n1. *OUT 500000 Pokok Belanja bulanan* (keterangan opsional)\n2. *OUT 100000 Hutang bayar hutang ke dinda* \n3. *OUT 200000 hobby beli alat pancing*"
)

// formatRupiah renders an amount with Indonesian thousand separators, so
// 1500000 becomes "1.500.000".
func formatRupiah(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := fmt.Sprintf("%d", amount)
	var b strings.Builder
	b.WriteString(sign)
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteString(".")
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteString(".")
		}
	}
	return b.String()
}

// recordConfirmation renders the reply for a stored entry. The trailing
// newline before an absent note matches the established message shape.
func recordConfirmation(kind domain.Kind, amount int64, category, note string) string {
	text := fmt.Sprintf("✅ %s sebesar *Rp%s* telah dicatat.\nJenis: *%s*\n", kind.Label(), formatRupiah(amount), category)
	if note != "" {
		text += fmt.Sprintf("Keterangan: *%s*", note)
	}
	return text
}

// dayListing renders a numbered per-day listing with a grand total.
func dayListing(header string, rows []domain.Transaction) string {
	var b strings.Builder
	b.WriteString(header)

	var total int64
	for i, row := range rows {
		total += row.Amount
		b.WriteString(fmt.Sprintf("#%d. Rp%s - %s", i+1, formatRupiah(row.Amount), row.Category))
		if row.Note != "" {
			b.WriteString(" - " + row.Note)
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("\n💰 Total: *Rp%s*", formatRupiah(total)))
	return b.String()
}

// deleteListing renders delete candidates with their real row ids, so the
// sender can address one with the #id form.
func deleteListing(header string, rows []domain.Transaction, footer string) string {
	var b strings.Builder
	b.WriteString(header)

	for _, row := range rows {
		b.WriteString(fmt.Sprintf("#%d - Rp%s - %s", row.ID, formatRupiah(row.Amount), row.Category))
		if row.Note != "" {
			b.WriteString(" - " + row.Note)
		}
		b.WriteString("\n")
	}

	b.WriteString(footer)
	return b.String()
}
