package testutil

// Test user information used for fixture commits.
const (
	// TestAuthor is the author name for fixture commits.
	TestAuthor = "Test User"

	// TestEmail is the author email for fixture commits.
	TestEmail = "test@example.com"
)

// Fixture content and names.
const (
	// TestFileContent is sample content for README files.
	TestFileContent = "# Test Repository\n\nThis is a test repository.\n"

	// TestInitialCommit is the message of the first fixture commit.
	TestInitialCommit = "Initial commit"

	// TestBranchDevelop is a secondary branch name.
	TestBranchDevelop = "develop"

	// TestTagName is a standard tag name.
	TestTagName = "v1.0.0"

	// TestTagName2 is a second tag name.
	TestTagName2 = "v1.1.0"
)
