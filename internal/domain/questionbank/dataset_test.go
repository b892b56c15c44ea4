package questionbank_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examprep/backend/internal/domain/questionbank"
)

const sampleDataset = `{
  "provider": "aws",
  "exam": "saa-c03",
  "study_data": [
    {
      "question": {
        "number": 1,
        "text": "Which storage class is cheapest for archives?",
        "options": [
          {"letter": "A", "text": "S3 Standard"},
          {"letter": "B", "text": "S3 Glacier Deep Archive"},
          {"letter": "C", "text": "EBS gp3"}
        ],
        "topic": "Storage Services",
        "difficulty": "easy",
        "keywords": ["glacier"]
      },
      "answer": {"correct_answer": "B", "explanation": "Deep Archive has the lowest cost."}
    },
    {
      "question": {
        "number": 2,
        "text": "Which storage class is cheapest for archives?",
        "options": [
          {"letter": "A", "text": "S3 Standard"},
          {"letter": "B", "text": "S3 Glacier Deep Archive"},
          {"letter": "C", "text": "EBS gp3"}
        ]
      },
      "answer": {"correct_answer": "B"}
    },
    {
      "question": {
        "number": 3,
        "text": "Select two highly available databases.",
        "options": [
          {"letter": "A", "text": "Aurora"},
          {"letter": "B", "text": "SQLite on EC2"},
          {"letter": "C", "text": "DynamoDB"}
        ]
      },
      "answer": {"correct_answer": "A, C"}
    },
    {
      "question": {
        "number": 4,
        "text": "Unanswered question",
        "options": [{"letter": "A", "text": "x"}]
      },
      "answer": {"correct_answer": ""}
    }
  ]
}`

func seqID(prefix string) func([]byte) string {
	n := 0
	return func([]byte) string {
		n++
		return prefix + string(rune('0'+n))
	}
}

func TestDataset_ToBank(t *testing.T) {
	var d questionbank.Dataset
	require.NoError(t, json.Unmarshal([]byte(sampleDataset), &d))

	bank, report, err := d.ToBank(seqID("q"))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Imported)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, []string{"storage-services", "general"}, report.Topics)

	require.Len(t, bank.Questions, 2)
	first := bank.Questions[0]
	assert.Equal(t, []string{"1"}, first.CorrectAnswer)
	assert.Equal(t, questionbank.DifficultyEasy, first.Difficulty)
	assert.Equal(t, "B", first.Options[1].Letter)
	assert.Equal(t, []string{"glacier"}, first.Tags)

	second := bank.Questions[1]
	assert.Equal(t, []string{"0", "2"}, second.CorrectAnswer)
	assert.Equal(t, questionbank.DifficultyMedium, second.Difficulty)
}

func TestDataset_RequiresProviderAndExam(t *testing.T) {
	_, _, err := questionbank.Dataset{}.ToBank(seqID("q"))
	assert.Error(t, err)
}

func TestFromBank_RoundTripsAnswers(t *testing.T) {
	var d questionbank.Dataset
	require.NoError(t, json.Unmarshal([]byte(sampleDataset), &d))
	bank, _, err := d.ToBank(seqID("q"))
	require.NoError(t, err)

	out := questionbank.FromBank(bank)
	require.Len(t, out.StudyData, 2)
	assert.Equal(t, "B", out.StudyData[0].Answer.CorrectAnswer)
	assert.Equal(t, "AC", out.StudyData[1].Answer.CorrectAnswer)
}

func TestParseAnswerLetters(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"A", []string{"A"}},
		{"ac", []string{"A", "C"}},
		{"A, C", []string{"A", "C"}},
		{"B and D", []string{"B", "D"}},
		{"A/C", []string{"A", "C"}},
		{"B.", []string{"B"}},
		{"Answer: B", []string{"B"}},
		{"Correct answers: A, D", []string{"A", "D"}},
		{"The answer is C", nil},
		{"answer is C", []string{"C"}},
		{"Amazon S3 because it is durable object storage", nil},
		{"Use CloudFront with an S3 origin", nil},
		{"A bucket policy", nil},
		{"ANSWER", nil},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, questionbank.ParseAnswerLetters(tt.in), tt.in)
	}
}

func TestDataset_ToBankSkipsProseAnswers(t *testing.T) {
	options := []questionbank.DatasetOption{
		{Letter: "A", Text: "Amazon S3"},
		{Letter: "B", Text: "Amazon EBS"},
		{Letter: "C", Text: "Amazon EFS"},
	}
	tests := []struct {
		answer   string
		imported bool
		correct  []string
	}{
		{"Answer: B", true, []string{"1"}},
		{"A and C", true, []string{"0", "2"}},
		{"Amazon S3 because it is durable object storage", false, nil},
		{"Store the files on EBS", false, nil},
		{"D", false, nil},
		{"A, D", false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			d := questionbank.Dataset{
				Provider: "aws",
				Exam:     "saa-c03",
				StudyData: []questionbank.StudyItem{{
					Question: questionbank.DatasetQuestion{Text: "Where should the files live?", Options: options},
					Answer:   questionbank.DatasetAnswer{CorrectAnswer: tt.answer},
				}},
			}
			bank, report, err := d.ToBank(seqID("q"))
			require.NoError(t, err)
			if !tt.imported {
				assert.Equal(t, 0, report.Imported)
				assert.Equal(t, 1, report.Skipped)
				assert.Empty(t, bank.Questions)
				return
			}
			assert.Equal(t, 1, report.Imported)
			require.Len(t, bank.Questions, 1)
			assert.Equal(t, tt.correct, bank.Questions[0].CorrectAnswer)
		})
	}
}

// Shape written by the study dataset scripts: no provider or exam, answer
// keys as letters or zero-based option indices.
const scriptDataset = `{
  "metadata": {
    "creation_date": "2025-06-01T10:00:00",
    "version": "1.0",
    "description": "AWS Certification Study Dataset - saa-c03_v1",
    "source_pdf": "saa-c03_v1.pdf"
  },
  "study_data": [
    {
      "question": {
        "id": "q1",
        "number": 1,
        "text": "Which service offers durable object storage?",
        "options": [{"text": "Amazon S3", "letter": "A"}, {"text": "Amazon EC2", "letter": "B"}],
        "topic": "Storage",
        "difficulty": "medium",
        "keywords": []
      },
      "answer": {"correct_answer": "A", "explanation": "S3 is object storage.", "confidence": "high"},
      "metadata": {"source_file": "saa-c03_v1.json"}
    },
    {
      "question_number": 2,
      "question": {
        "text": "Select two serverless services.",
        "options": [["A", "AWS Lambda"], ["B", "Amazon EC2"], ["C", "AWS Fargate"]],
        "topic": "Compute"
      },
      "answer": {"correct_answer": [0, 2], "parsing_confidence": 0.9},
      "study_metadata": {"difficulty": "hard"}
    },
    {
      "question": {
        "text": "Which database is managed?",
        "options": ["Amazon RDS", "MySQL on EC2"]
      },
      "answer": {"correct_answer": 0, "confidence": 0.75}
    },
    {
      "question": {
        "text": "Which index is out of range?",
        "options": ["only"]
      },
      "answer": {"correct_answer": [3]}
    }
  ]
}`

func TestDataset_ToBankScriptShape(t *testing.T) {
	var d questionbank.Dataset
	require.NoError(t, json.Unmarshal([]byte(scriptDataset), &d))
	require.NotNil(t, d.Metadata)
	assert.Equal(t, "saa-c03_v1.pdf", d.Metadata.SourcePDF)
	assert.Equal(t, []int{0, 2}, d.StudyData[1].Answer.CorrectIndices)
	assert.Equal(t, "0.75", d.StudyData[2].Answer.Confidence)

	_, _, err := d.ToBank(seqID("q"))
	require.Error(t, err)

	d = d.WithDefaults("aws", "saa-c03")
	bank, report, err := d.ToBank(seqID("q"))
	require.NoError(t, err)
	assert.Equal(t, 3, report.Imported)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, "aws", bank.ProviderID)
	assert.Equal(t, "saa-c03", bank.ExamID)

	require.Len(t, bank.Questions, 3)
	assert.Equal(t, []string{"0"}, bank.Questions[0].CorrectAnswer)

	serverless := bank.Questions[1]
	assert.Equal(t, []string{"0", "2"}, serverless.CorrectAnswer)
	assert.Equal(t, questionbank.DifficultyHard, serverless.Difficulty)
	assert.Equal(t, "C", serverless.Options[2].Letter)
	assert.Equal(t, "AWS Fargate", serverless.Options[2].Text)

	managed := bank.Questions[2]
	assert.Equal(t, []string{"0"}, managed.CorrectAnswer)
	assert.Equal(t, "B", managed.Options[1].Letter)
	assert.Equal(t, "general", managed.TopicID)
}

func TestDataset_WithDefaultsKeepsFileValues(t *testing.T) {
	d := questionbank.Dataset{Provider: "gcp", Exam: ""}.WithDefaults("aws", " saa-c03 ")
	assert.Equal(t, "gcp", d.Provider)
	assert.Equal(t, "saa-c03", d.Exam)
}

func TestDatasetAnswer_RejectsUnknownKeyShape(t *testing.T) {
	var a questionbank.DatasetAnswer
	assert.Error(t, json.Unmarshal([]byte(`{"correct_answer": {"letter": "A"}}`), &a))
	assert.Error(t, json.Unmarshal([]byte(`{"correct_answer": ["A"]}`), &a))
}

func TestTopicSlug(t *testing.T) {
	assert.Equal(t, "storage-services", questionbank.TopicSlug("Storage Services"))
	assert.Equal(t, "iam-security", questionbank.TopicSlug("  IAM & Security! "))
	assert.Equal(t, questionbank.DefaultTopic, questionbank.TopicSlug(""))
}
