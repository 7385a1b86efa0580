package base

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/rodgg/geonames-db/pkg/core/schema"
)

// TSVReader потоково читает tab-delimited файл справочника GeoNames
// и отдает типизированные строки для массовой загрузки.
//
// Правила разбора:
//   - строки из одного поля, начинающегося с '#', пропускаются (комментарии);
//   - пустые строки пропускаются;
//   - короткие строки дополняются NULL справа до числа колонок;
//   - пустое поле означает NULL, а не пустую строку;
//   - некорректные UTF-8 последовательности заменяются U+FFFD (lossy decode):
//     одна битая строка не должна ронять загрузку десятков миллионов строк.
//
// Реализует adapters.RowSource: Next возвращает io.EOF после последней строки.
type TSVReader struct {
	r     *bufio.Reader
	cols  []schema.ColumnDef
	conv  *TypeConverter
	rows  int64
	done  bool
}

// NewTSVReader создает reader поверх произвольного io.Reader.
// cols — загружаемые колонки таблицы в порядке полей файла.
func NewTSVReader(r io.Reader, cols []schema.ColumnDef) *TSVReader {
	return &TSVReader{
		r:    bufio.NewReaderSize(r, 256*1024),
		cols: cols,
		conv: NewTypeConverter(),
	}
}

// RowsRead возвращает количество отданных строк данных
func (t *TSVReader) RowsRead() int64 {
	return t.rows
}

// Next возвращает следующую строку данных в виде типизированных значений.
// io.EOF означает конец файла.
func (t *TSVReader) Next() ([]any, error) {
	if t.done {
		return nil, io.EOF
	}

	for {
		line, err := t.readLine()
		if err == io.EOF {
			t.done = true
			if line == "" {
				return nil, io.EOF
			}
		} else if err != nil {
			return nil, fmt.Errorf("failed to read line: %w", err)
		}

		if line == "" {
			if t.done {
				return nil, io.EOF
			}
			continue
		}

		fields := strings.Split(line, "\t")

		// Комментарий: единственное поле, начинающееся с '#'
		if len(fields) == 1 && strings.HasPrefix(fields[0], "#") {
			if t.done {
				return nil, io.EOF
			}
			continue
		}

		row := make([]any, len(t.cols))
		for i, col := range t.cols {
			if i >= len(fields) {
				// Короткая строка: дополняем NULL
				row[i] = nil
				continue
			}
			row[i] = t.conv.Convert(fields[i], col)
		}

		t.rows++
		return row, nil
	}
}

// readLine читает одну логическую строку с lossy-декодированием UTF-8
func (t *TSVReader) readLine() (string, error) {
	line, err := t.r.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line != "" {
		line = strings.ToValidUTF8(line, "�")
	}
	return line, err
}

// OpenData открывает файл данных, прозрачно распаковывая
// .gz (gzip) и .zst (zstd) дампы GeoNames
func OpenData(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}

	r, err := WrapDecompression(path, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &readCloser{Reader: r, close: func() error {
		if c, ok := r.(io.Closer); ok && r != io.Reader(f) {
			c.Close()
		}
		return f.Close()
	}}, nil
}

// WrapDecompression оборачивает поток распаковкой, выбранной по
// расширению файла (.gz, .zst). Нижележащий reader не закрывает —
// этим владеет вызывающий код (он мог вставить между файлом и
// декомпрессором счетчик прогресса).
func WrapDecompression(path string, r io.Reader) (io.Reader, error) {
	switch {
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		return zr, nil

	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		return zr.IOReadCloser(), nil

	default:
		return r, nil
	}
}

// readCloser связывает декомпрессор и нижележащий файл,
// чтобы Close освобождал оба
type readCloser struct {
	io.Reader
	close func() error
}

func (rc *readCloser) Close() error {
	return rc.close()
}
