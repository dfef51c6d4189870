// Package rendercontext builds the flat placeholder map for one decree.
//
// Templates in circulation were authored independently over several years
// and spell the same field many ways. Each semantic Field owns a list of
// spellings; Aliases expands them with case variants so Build writes every
// spelling from one table.
package rendercontext

import (
	"sort"
	"strings"
)

// Field is one semantic value printed on a decree.
type Field int

const (
	FieldName Field = iota
	FieldNIP
	FieldUnit
	FieldRole
	FieldEducation
	FieldSubject
	FieldBirth
	FieldTenureStart
	FieldCategory
	FieldCertification
	FieldDecreeNumber
	FieldIssueDate
	FieldIssuePlace
	FieldExpiryDate
	FieldYear
	FieldChair
	FieldSecretary
	FieldVerifyURL
)

// spellings lists the base spellings per field. Case variants are derived;
// list a spelling here only when it differs by more than case.
var spellings = map[Field][]string{
	FieldName:          {"NAMA", "NAMA LENGKAP", "NAMA_LENGKAP", "NAMA_GURU", "NAMA GURU", "nama_pegawai", "name"},
	FieldNIP:           {"NIP", "NUPTK", "NIP/NUPTK", "NIP_NUPTK", "NOMOR INDUK", "(NIP)"},
	FieldUnit:          {"UNIT", "UNIT KERJA", "UNIT_KERJA", "MADRASAH", "SEKOLAH", "SATMINKAL", "TEMPAT TUGAS", "TEMPAT_TUGAS"},
	FieldRole:          {"JABATAN", "TUGAS", "JABATAN_TUGAS", "STATUS KEPEGAWAIAN"},
	FieldEducation:     {"PENDIDIKAN", "PENDIDIKAN TERAKHIR", "PENDIDIKAN_TERAKHIR", "IJAZAH"},
	FieldSubject:       {"MAPEL", "MATA PELAJARAN", "MATA_PELAJARAN", "TUGAS MENGAJAR"},
	FieldBirth:         {"TTL", "TEMPAT TANGGAL LAHIR", "TEMPAT_TANGGAL_LAHIR", "TEMPAT, TANGGAL LAHIR", "(TTL)"},
	FieldTenureStart:   {"TMT", "TMT MENGAJAR", "TMT_MENGAJAR", "TMT TUGAS", "TANGGAL MULAI TUGAS", "(TMT)"},
	FieldCategory:      {"JENIS SK", "JENIS_SK", "KATEGORI", "STATUS"},
	FieldCertification: {"SERTIFIKASI", "STATUS SERTIFIKASI", "STATUS_SERTIFIKASI"},
	FieldDecreeNumber:  {"NOMOR SK", "NOMOR_SK", "NO SK", "NO_SK", "NOMOR SURAT", "(NO SK)"},
	FieldIssueDate:     {"TANGGAL SK", "TANGGAL_SK", "TANGGAL PENETAPAN", "TANGGAL_PENETAPAN", "DITETAPKAN TANGGAL", "TGL SK"},
	FieldIssuePlace:    {"TEMPAT PENETAPAN", "TEMPAT_PENETAPAN", "DITETAPKAN DI"},
	FieldExpiryDate:    {"MASA BERLAKU", "MASA_BERLAKU", "BERLAKU SAMPAI", "BERLAKU_SAMPAI", "TANGGAL BERAKHIR"},
	FieldYear:          {"TAHUN", "TAHUN SK", "TAHUN_SK"},
	FieldChair:         {"KETUA", "NAMA KETUA", "NAMA_KETUA", "PENANDATANGAN"},
	FieldSecretary:     {"SEKRETARIS", "NAMA SEKRETARIS", "NAMA_SEKRETARIS"},
	FieldVerifyURL:     {"LINK VERIFIKASI", "LINK_VERIFIKASI", "URL VERIFIKASI", "VERIFY_URL"},
}

// Fields returns every field in declaration order.
func Fields() []Field {
	out := make([]Field, 0, len(spellings))
	for f := range spellings {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Aliases returns every key spelling of f: for each base spelling its
// upper-case, lower-case and title-case forms, deduplicated, in a stable order.
func Aliases(f Field) []string {
	seen := map[string]bool{}
	var out []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, base := range spellings[f] {
		add(strings.ToUpper(base))
		add(strings.ToLower(base))
		add(titleCase(base))
	}
	return out
}

// titleCase upper-cases the first letter of each word and lower-cases the
// rest. Words are separated by space, underscore, slash or an opening paren.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	startOfWord := true
	for _, r := range strings.ToLower(s) {
		if startOfWord {
			b.WriteString(strings.ToUpper(string(r)))
		} else {
			b.WriteRune(r)
		}
		startOfWord = r == ' ' || r == '_' || r == '/' || r == '('
	}
	return b.String()
}
