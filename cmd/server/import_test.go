package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scriptOutput = `{
  "metadata": {"version": "1.0", "description": "AWS Certification Study Dataset - saa-c03"},
  "study_data": [
    {
      "question": {"text": "Which service stores objects?", "options": [{"text": "Amazon S3", "letter": "A"}, {"text": "Amazon EC2", "letter": "B"}]},
      "answer": {"correct_answer": [0]}
    }
  ]
}`

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestReadDataset_FillsProviderAndExam(t *testing.T) {
	path := writeFile(t, scriptOutput)

	_, err := readDataset(path, "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--provider")

	d, err := readDataset(path, "aws", "saa-c03")
	require.NoError(t, err)
	assert.Equal(t, "aws", d.Provider)
	assert.Equal(t, "saa-c03", d.Exam)
	assert.Equal(t, []int{0}, d.StudyData[0].Answer.CorrectIndices)
}

func TestReadDataset_FileValuesWin(t *testing.T) {
	path := writeFile(t, `{"provider": "gcp", "exam": "ace", "study_data": []}`)
	d, err := readDataset(path, "aws", "saa-c03")
	require.NoError(t, err)
	assert.Equal(t, "gcp", d.Provider)
	assert.Equal(t, "ace", d.Exam)
}

func TestImportCmd_DatasetFlags(t *testing.T) {
	require.NoError(t, importCmd.Flags().Set("provider", "aws"))
	require.NoError(t, importCmd.Flags().Set("exam", "saa-c03"))
	t.Cleanup(func() {
		_ = importCmd.Flags().Set("provider", "")
		_ = importCmd.Flags().Set("exam", "")
	})

	provider, exam := datasetDefaults(importCmd)
	assert.Equal(t, "aws", provider)
	assert.Equal(t, "saa-c03", exam)
	assert.NotNil(t, simulateCmd.Flags().Lookup("provider"))
}
